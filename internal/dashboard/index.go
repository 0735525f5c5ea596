package dashboard

import (
	"html/template"
	"log"
	"net/http"
)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>CycleWatch</title>
<style>
  body { font-family: sans-serif; margin: 2em auto; max-width: 720px; color: #222; }
  h1 { font-size: 1.4em; }
  table { border-collapse: collapse; width: 100%; }
  th, td { text-align: left; padding: 0.5em 0.8em; border-bottom: 1px solid #ddd; }
  .GREEN  { color: #1a7f37; font-weight: bold; }
  .YELLOW { color: #b58900; font-weight: bold; }
  .RED    { color: #c62828; font-weight: bold; }
  .UNKNOWN { color: #888; font-weight: bold; }
  .banner { padding: 0.6em 1em; border-radius: 4px; margin-bottom: 1.5em; background: #f5f5f5; }
  button { padding: 0.4em 1em; }
</style>
</head>
<body>
<h1>CycleWatch: market cycle risk</h1>
<div class="banner">Overall assessment: <span class="{{.Overall}}">{{.Overall}}</span></div>
<table>
<tr><th>Indicator</th><th>Value</th><th>Risk</th></tr>
{{range .Indicators}}
<tr>
  <td>{{.Name}}</td>
  {{if .Insufficient}}<td>insufficient data</td>{{else}}<td>{{printf "%.3f" .Value}}</td>{{end}}
  <td class="{{.Level}}">{{.Level}}</td>
</tr>
{{end}}
</table>
<p><small>Computed {{.ComputedAt.Format "2006-01-02 15:04:05 MST"}}</small></p>
<button onclick="fetch('/api/refresh',{method:'POST'}).then(r=>r.json()).then(j=>alert(j.status||j.error))">Fetch now</button>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	payload, err := s.computePayload()
	if err != nil {
		log.Printf("[ERROR] render dashboard: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, payload); err != nil {
		log.Printf("[ERROR] render dashboard: %v", err)
	}
}
