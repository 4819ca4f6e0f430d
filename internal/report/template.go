package report

// ReportTemplate is the HTML template for the research report.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 960px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; margin-bottom: 4px; font-weight: 600; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); font-weight: 600; }
  h3 { font-size: 1rem; margin: 16px 0 8px; font-weight: 600; }
  p { margin: 6px 0; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-left h1 { color: var(--accent); }
  .header-right { text-align: right; }
  .ticker-badge {
    display: inline-block;
    background: var(--accent);
    color: white;
    padding: 2px 12px;
    border-radius: 4px;
    font-weight: 700;
    font-size: 1.1rem;
    margin-right: 8px;
  }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: right; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); text-align: right; }
  th:first-child, td:first-child, th:nth-child(2), td:nth-child(2) { text-align: left; }
  tr.anchor td { font-weight: 600; background: #eff6ff; }
  tr.median td { font-style: italic; border-top: 2px solid var(--border); }
  .premium { color: var(--red); }
  .discount { color: var(--green); }

  .chart-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; }
  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }

  .section { margin: 20px 0; }
  .thesis-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; }
  .thesis-card { background: var(--section-bg); padding: 12px; border-radius: 6px; }
  .thesis-card h3 { margin-top: 0; }
  ul.checklist { list-style: none; margin: 4px 0 12px; }
  ul.checklist li.done { color: var(--muted); text-decoration: line-through; }
  .assumptions { background: var(--section-bg); padding: 12px; border-radius: 6px; }

  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }
  @media print {
    body { max-width: 100%; padding: 10px; }
    .section { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<!-- ═══════ HEADER ═══════ -->
<div class="header">
  <div class="header-left">
    <h1><span class="ticker-badge">{{.AnchorTicker}}</span> {{.AnchorName}}</h1>
    <p class="muted">{{.SetName}} · saved {{.CreatedAt}} · price {{.AnchorPrice}}</p>
  </div>
  <div class="header-right">
    <p class="muted">{{.GeneratedAt}}</p>
    <p class="muted">{{.Author}}</p>
  </div>
</div>

<!-- ═══════ VALUATION ═══════ -->
<div class="section" id="valuation">
  <h2>Relative Valuation</h2>
  <table>
    <thead><tr><th>Multiple</th><th>Anchor</th><th>Median</th><th>Premium</th><th>Implied Price</th><th>Upside</th></tr></thead>
    <tbody>
    {{range .Valuations}}
    <tr>
      <td>{{.Metric}}</td>
      <td>{{.Anchor}}</td>
      <td>{{.Median}}</td>
      <td class="{{.Class}}">{{.Premium}}</td>
      <td>{{.Implied}}</td>
      <td>{{.Upside}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>
  {{if or .PEChart .EVChart}}
  <div class="chart-grid">
    {{if .PEChart}}<div class="chart-container">{{.PEChart}}</div>{{end}}
    {{if .EVChart}}<div class="chart-container">{{.EVChart}}</div>{{end}}
  </div>
  {{end}}
</div>

<!-- ═══════ COMPS TABLE ═══════ -->
<div class="section" id="comps">
  <h2>Comparable Companies</h2>
  {{if .Rows}}
  <table>
    <thead><tr><th>Ticker</th><th>Name</th><th>Market Cap</th><th>EV</th><th>Revenue</th><th>EBITDA</th><th>P/E</th><th>EV/EBITDA</th><th>EV/Revenue</th></tr></thead>
    <tbody>
    {{range .Rows}}
    <tr{{if .IsAnchor}} class="anchor"{{end}}>
      <td>{{.Ticker}}</td><td>{{.Name}}</td><td>{{.MarketCap}}</td><td>{{.EV}}</td><td>{{.Revenue}}</td>
      <td>{{.EBITDA}}</td><td>{{.PE}}</td><td>{{.EVEbitda}}</td><td>{{.EVRevenue}}</td>
    </tr>
    {{end}}
    {{with .Median}}
    <tr class="median">
      <td>{{.Ticker}}</td><td>{{.Name}}</td><td>{{.MarketCap}}</td><td>{{.EV}}</td><td>{{.Revenue}}</td>
      <td>{{.EBITDA}}</td><td>{{.PE}}</td><td>{{.EVEbitda}}</td><td>{{.EVRevenue}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>
  {{else}}
  <p class="muted">No comps data was loaded when this set was saved.</p>
  {{end}}
  {{if .Peers}}<p class="muted">Peers: {{.Peers}}</p>{{end}}
</div>

<!-- ═══════ THESIS ═══════ -->
{{with .Thesis}}
<div class="section" id="thesis">
  <h2>Investment Thesis</h2>
  {{if .TargetPrice}}<p><strong>Target price:</strong> {{.TargetPrice}}</p>{{end}}
  <div class="thesis-grid">
    <div class="thesis-card"><h3>Bull case</h3>{{.Bull}}</div>
    <div class="thesis-card"><h3>Bear case</h3>{{.Bear}}</div>
    <div class="thesis-card"><h3>Catalysts</h3>{{.Catalysts}}</div>
    <div class="thesis-card"><h3>Risks</h3>{{.Risks}}</div>
  </div>
  <h3>Checklist ({{.Done}}/{{.Total}})</h3>
  {{range .Phases}}
  <p class="muted">{{.Label}}</p>
  <ul class="checklist">
    {{range .Items}}<li{{if .Done}} class="done"{{end}} data-id="{{.ID}}">{{if .Done}}&#9745;{{else}}&#9744;{{end}} {{.Label}}</li>{{end}}
  </ul>
  {{end}}
</div>
{{end}}

<!-- ═══════ ASSUMPTIONS ═══════ -->
{{if .Assumptions}}
<div class="section" id="assumptions">
  <h2>Assumptions</h2>
  <div class="assumptions">{{.Assumptions}}</div>
</div>
{{end}}

<div class="footer">
  <p>{{.Title}} · set {{.SetID}}</p>
  <p>For research purposes only. Not investment advice.</p>
</div>
</body>
</html>
`
