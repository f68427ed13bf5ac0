// internal/app/features/console/handler.go
//
// console is the operator's what-if surface: it evaluates a hypothetical
// request against the live mirror and shows recent recorded decisions, so a
// surprise allow/deny can be reproduced and traced to the granting rule.
package console

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dalemusser/classhub/internal/app/policy/engine"
	"github.com/dalemusser/classhub/internal/app/policy/rules"
	decisionstore "github.com/dalemusser/classhub/internal/app/store/decisions"
	"github.com/dalemusser/classhub/internal/app/store/snapshot"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/csvutil"
	"github.com/dalemusser/classhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/classhub/internal/app/system/limits"
	"github.com/dalemusser/classhub/internal/app/system/paging"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
)

const recentLimit = 50

// Handler serves the operator console.
type Handler struct {
	Engine  *engine.Engine
	Source  snapshot.Source
	Records *decisionstore.Store // nil when decision persistence is off
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(eng *engine.Engine, source snapshot.Source, records *decisionstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:  eng,
		Source:  source,
		Records: records,
		Audit:   audit,
		Log:     logger,
	}
}

type formData struct {
	Operation string
	Actor     string
	Path      string
	Resource  string
	Proposed  string
	Note      string
}

type viewData struct {
	Form     formData
	Error    string
	Decision *engine.Decision
	Note     template.HTML
	Recent   []decisionstore.Record
}

var consoleTmpl = template.Must(template.New("console").Parse(`<!DOCTYPE html>
<html>
<head><title>Decision console</title></head>
<body>
  <h1>Decision console</h1>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  {{if .Decision}}
  <section class="result">
    {{if .Decision.Allowed}}<p class="allow">ALLOW — rule {{.Decision.Rule}} ({{.Decision.Ruleset}})</p>
    {{else}}<p class="deny">DENY{{if .Decision.Rule}} — {{.Decision.Rule}}{{end}}</p>{{end}}
    {{if .Note}}<div class="note">{{.Note}}</div>{{end}}
  </section>
  {{end}}
  <form method="post" action="/console">
    <label>Operation
      <select name="operation">
        <option{{if eq .Form.Operation "read"}} selected{{end}}>read</option>
        <option{{if eq .Form.Operation "create"}} selected{{end}}>create</option>
        <option{{if eq .Form.Operation "update"}} selected{{end}}>update</option>
        <option{{if eq .Form.Operation "delete"}} selected{{end}}>delete</option>
      </select>
    </label>
    <label>Actor <input type="text" name="actor" value="{{.Form.Actor}}"></label>
    <label>Path <input type="text" name="path" value="{{.Form.Path}}"></label>
    <label>Existing document (JSON) <textarea name="resource">{{.Form.Resource}}</textarea></label>
    <label>Proposed document (JSON) <textarea name="proposed">{{.Form.Proposed}}</textarea></label>
    <label>Note <textarea name="note">{{.Form.Note}}</textarea></label>
    <button type="submit">Evaluate</button>
  </form>
  {{if .Recent}}
  <h2>Recent decisions</h2>
  <table>
    <thead><tr><th>Time</th><th>Actor</th><th>Op</th><th>Path</th><th>Outcome</th><th>Rule</th><th>Source</th></tr></thead>
    <tbody>
    {{range .Recent}}
      <tr>
        <td>{{.Timestamp.Format "2006-01-02 15:04:05"}}</td>
        <td>{{.Actor}}</td>
        <td>{{.Operation}}</td>
        <td>{{.Path}}</td>
        <td>{{if .Allowed}}allow{{else}}deny{{end}}</td>
        <td>{{.Rule}}</td>
        <td>{{.Source}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
  {{end}}
</body>
</html>
`))

func (h *Handler) render(w http.ResponseWriter, status int, data viewData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := consoleTmpl.Execute(w, data); err != nil {
		h.Log.Error("console: render", zap.Error(err))
	}
}

func (h *Handler) recent(ctx context.Context) []decisionstore.Record {
	if h.Records == nil {
		return nil
	}
	records, err := h.Records.Recent(ctx, recentLimit)
	if err != nil {
		h.Log.Error("console: load recent decisions", zap.Error(err))
		return nil
	}
	return records
}

// ServeConsole handles GET /console.
func (h *Handler) ServeConsole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.render(w, http.StatusOK, viewData{
		Form:   formData{Operation: "read", Actor: r.URL.Query().Get("actor")},
		Recent: h.recent(ctx),
	})
}

func parseDoc(raw string) (rules.Document, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return rules.Document(doc), nil
}

// HandleEvaluate handles POST /console: runs the hypothetical request and
// records it with the operator's note.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxConsoleFormSize)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	form := formData{
		Operation: r.PostFormValue("operation"),
		Actor:     strings.TrimSpace(r.PostFormValue("actor")),
		Path:      strings.TrimSpace(r.PostFormValue("path")),
		Resource:  r.PostFormValue("resource"),
		Proposed:  r.PostFormValue("proposed"),
		Note:      r.PostFormValue("note"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	op, err := rules.ParseOperation(form.Operation)
	if err != nil {
		h.render(w, http.StatusBadRequest, viewData{
			Form: form, Error: "Unknown operation.", Recent: h.recent(ctx),
		})
		return
	}
	resource, err := parseDoc(form.Resource)
	if err != nil {
		h.render(w, http.StatusBadRequest, viewData{
			Form: form, Error: "Existing document is not valid JSON.", Recent: h.recent(ctx),
		})
		return
	}
	proposed, err := parseDoc(form.Proposed)
	if err != nil {
		h.render(w, http.StatusBadRequest, viewData{
			Form: form, Error: "Proposed document is not valid JSON.", Recent: h.recent(ctx),
		})
		return
	}

	snap, release, err := h.Source.View(ctx)
	if err != nil {
		h.Log.Error("console: snapshot view failed", zap.Error(err))
		h.render(w, http.StatusServiceUnavailable, viewData{
			Form: form, Error: "Document mirror unavailable.",
		})
		return
	}
	defer release()

	decision := h.Engine.Decide(ctx, snap, engine.Request{
		Operation: op,
		Actor:     form.Actor,
		Path:      form.Path,
		Resource:  resource,
		Proposed:  proposed,
	})

	// Operator notes may carry formatting; store and render them through
	// the sanitizer.
	note := htmlsanitize.Sanitize(form.Note)

	h.Audit.Record(ctx, decisionstore.Record{
		Actor:     form.Actor,
		Operation: string(op),
		Path:      form.Path,
		Allowed:   decision.Allowed,
		Rule:      decision.Rule,
		Ruleset:   decision.Ruleset,
		Source:    decisionstore.SourceConsole,
		IP:        auditlog.ClientIP(r),
		Note:      note,
	})

	h.render(w, http.StatusOK, viewData{
		Form:     form,
		Decision: &decision,
		Note:     htmlsanitize.PrepareForDisplay(note),
		Recent:   h.recent(ctx),
	})
}

type historyData struct {
	Actor   string
	Outcome string // "", "allow", or "deny"
	Records []decisionstore.Record
	Page    paging.Result
	Range   paging.Range
}

var historyTmpl = template.Must(template.New("history").Parse(`<!DOCTYPE html>
<html>
<head><title>Decision history</title></head>
<body>
  <h1>Decision history</h1>
  <form method="get" action="/console/history">
    <label>Actor <input type="text" name="actor" value="{{.Actor}}"></label>
    <label>Outcome
      <select name="outcome">
        <option value=""{{if eq .Outcome ""}} selected{{end}}>any</option>
        <option value="allow"{{if eq .Outcome "allow"}} selected{{end}}>allow</option>
        <option value="deny"{{if eq .Outcome "deny"}} selected{{end}}>deny</option>
      </select>
    </label>
    <button type="submit">Filter</button>
    <a href="/console/history.csv?actor={{.Actor}}&outcome={{.Outcome}}">Export CSV</a>
  </form>
  {{if .Records}}
  <table>
    <thead><tr><th>Time</th><th>Actor</th><th>Op</th><th>Path</th><th>Outcome</th><th>Rule</th><th>Source</th><th>IP</th></tr></thead>
    <tbody>
    {{range .Records}}
      <tr>
        <td>{{.Timestamp.Format "2006-01-02 15:04:05"}}</td>
        <td>{{.Actor}}</td>
        <td>{{.Operation}}</td>
        <td>{{.Path}}</td>
        <td>{{if .Allowed}}allow{{else}}deny{{end}}</td>
        <td>{{.Rule}}</td>
        <td>{{.Source}}</td>
        <td>{{.IP}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
  <p>
    Showing {{.Range.Start}}&ndash;{{.Range.End}}.
    {{if .Page.HasPrev}}<a href="/console/history?start={{.Range.PrevStart}}&actor={{.Actor}}&outcome={{.Outcome}}">&laquo; Prev</a>{{end}}
    {{if .Page.HasNext}}<a href="/console/history?start={{.Range.NextStart}}&actor={{.Actor}}&outcome={{.Outcome}}">Next &raquo;</a>{{end}}
  </p>
  {{else}}
  <p>No recorded decisions match.</p>
  {{end}}
  <p><a href="/console">Back to console</a></p>
</body>
</html>
`))

func historyFilter(r *http.Request) (decisionstore.QueryFilter, string, string) {
	actor := strings.TrimSpace(r.URL.Query().Get("actor"))
	outcome := r.URL.Query().Get("outcome")

	filter := decisionstore.QueryFilter{Actor: actor}
	switch outcome {
	case "allow":
		v := true
		filter.Allowed = &v
	case "deny":
		v := false
		filter.Allowed = &v
	default:
		outcome = ""
	}
	return filter, actor, outcome
}

// ServeHistory handles GET /console/history: a paged, filterable view of
// recorded decisions.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter, actor, outcome := historyFilter(r)
	start := paging.ParseStart(r)

	data := historyData{Actor: actor, Outcome: outcome}
	if h.Records != nil {
		filter.Limit = paging.LimitPlusOne()
		filter.Offset = int64(start - 1)

		records, err := h.Records.Query(ctx, filter)
		if err != nil {
			h.Log.Error("console: history query", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		data.Page = paging.TrimPage(&records, start)
		data.Range = paging.ComputeRange(start, len(records))
		data.Records = records
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := historyTmpl.Execute(w, data); err != nil {
		h.Log.Error("console: render history", zap.Error(err))
	}
}

// ServeHistoryCSV handles GET /console/history.csv.
func (h *Handler) ServeHistoryCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	filter, _, _ := historyFilter(r)
	filter.Limit = csvutil.MaxExportRows

	var records []decisionstore.Record
	if h.Records != nil {
		var err error
		records, err = h.Records.Query(ctx, filter)
		if err != nil {
			h.Log.Error("console: history export query", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="decisions.csv"`)
	if err := csvutil.WriteDecisions(w, records); err != nil {
		h.Log.Error("console: history export write", zap.Error(err))
	}
}
