package web

import "html/template"

var pageTemplates = template.Must(template.New("pages").Parse(uploadPage + dashboardPage))

const uploadPage = `{{define "upload"}}<!DOCTYPE html>
<html>
<head><title>tabdash</title><style>
body{font-family:sans-serif;max-width:720px;margin:40px auto;padding:0 16px}
.banner{background:#fdecea;border:1px solid #f5c6cb;color:#721c24;padding:10px;margin-bottom:16px}
</style></head>
<body>
<h1>Sales Dashboard</h1>
{{if .Banner}}<div class="banner">{{.Banner}}</div>{{end}}
<p>Upload a CSV or Excel file to explore it.</p>
<form method="post" action="/upload" enctype="multipart/form-data">
  <input type="file" name="file" accept=".csv,.xlsx" required>
  <button type="submit">Upload</button>
</form>
</body>
</html>{{end}}`

const dashboardPage = `{{define "dashboard"}}<!DOCTYPE html>
<html>
<head><title>tabdash - {{.Filename}}</title><style>
body{font-family:sans-serif;max-width:1100px;margin:24px auto;padding:0 16px}
.banner{background:#fdecea;border:1px solid #f5c6cb;color:#721c24;padding:10px;margin-bottom:16px}
.kpis{display:flex;gap:24px;margin:16px 0}
.kpi{border:1px solid #ddd;padding:12px 20px}
.kpi b{display:block;font-size:22px}
table{border-collapse:collapse;margin:12px 0}
td,th{border:1px solid #ddd;padding:4px 10px;text-align:left}
fieldset{margin:8px 0}
iframe{border:1px solid #ddd;width:100%;height:480px}
</style></head>
<body>
<h1>{{.Filename}}</h1>
{{if .Banner}}<div class="banner">{{.Banner}}</div>{{end}}
<p>{{.FilteredRows}} of {{.TotalRows}} rows match the current filters.
<a href="/">upload another file</a></p>

<form method="post" action="/filters{{.ControlQuery}}">
{{range .FilterColumns}}
<fieldset><legend>{{.Name}}</legend>
{{$col := .}}{{range .Options}}<label><input type="checkbox" name="f_{{$col.Name}}" value="{{.Value}}"{{if .Checked}} checked{{end}}> {{.Value}}</label> {{end}}
</fieldset>
{{end}}
{{range .DateColumns}}
<fieldset><legend>{{.Name}} range</legend>
<input type="date" name="from_{{.Name}}" value="{{.From}}"> to
<input type="date" name="to_{{.Name}}" value="{{.To}}">
</fieldset>
{{end}}
<button type="submit">Apply filters</button>
</form>

<div class="kpis">
<div class="kpi"><b>{{printf "%.2f" .KPI.Sum}}</b>total {{.Metric}}</div>
<div class="kpi"><b>{{if .KPI.HasMean}}{{printf "%.2f" .KPI.Mean}}{{else}}N/A{{end}}</b>mean {{.Metric}}</div>
<div class="kpi"><b>{{.KPI.Count}}</b>rows</div>
</div>

{{if .TopRows}}
<h2>Top {{len .TopRows}} {{.Group}} by {{.Metric}}</h2>
<table><tr><th>{{.Group}}</th><th>{{.Metric}}</th></tr>
{{range .TopRows}}<tr><td>{{.Group}}</td><td>{{printf "%.2f" .Value}}</td></tr>{{end}}
</table>
{{end}}

{{if .ChartURL}}<iframe src="{{.ChartURL}}"></iframe>{{end}}

<h2>Preview</h2>
<table>
<tr>{{range .Columns}}<th>{{.Name}}</th>{{end}}</tr>
{{range .PreviewRows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}
</table>
{{if .NextCursor}}<a href="/dashboard?cursor={{.NextCursor}}">next page</a>{{end}}

<p>
<a href="/export/csv">Download CSV</a> |
<a href="/export/xlsx">Download Excel</a>
</p>
</body>
</html>{{end}}`
