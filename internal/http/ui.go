package http

import nethttp "net/http"

func dashboardHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.URL.Path != "/" {
		nethttp.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(dashboardHTML))
}

func faviconHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.WriteHeader(nethttp.StatusNoContent)
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>SLA Monitor</title>
<style>
  :root { --bg:#10151c; --panel:#1a212b; --line:#2a3442; --text:#dce3ec; --dim:#8595a8; --ok:#3fb26f; --warn:#d9a23c; --bad:#d9534f; }
  * { box-sizing: border-box; }
  body { margin:0; background:var(--bg); color:var(--text); font:14px/1.5 system-ui, sans-serif; }
  header { padding:14px 20px; border-bottom:1px solid var(--line); display:flex; align-items:center; gap:16px; }
  header h1 { font-size:16px; margin:0; }
  header .spacer { flex:1; }
  button { background:var(--panel); color:var(--text); border:1px solid var(--line); border-radius:6px; padding:6px 12px; cursor:pointer; }
  button:hover { border-color:var(--dim); }
  main { padding:20px; display:grid; gap:20px; }
  .panel { background:var(--panel); border:1px solid var(--line); border-radius:8px; padding:16px; }
  .panel h2 { font-size:14px; margin:0 0 10px; color:var(--dim); text-transform:uppercase; letter-spacing:.05em; }
  .controls { display:flex; gap:10px; margin-bottom:10px; flex-wrap:wrap; }
  input[type=text], input[type=date] { background:var(--bg); color:var(--text); border:1px solid var(--line); border-radius:6px; padding:6px 10px; }
  table { width:100%; border-collapse:collapse; }
  th, td { text-align:left; padding:7px 10px; border-bottom:1px solid var(--line); white-space:nowrap; }
  th { color:var(--dim); cursor:pointer; user-select:none; }
  th .arrow { margin-left:4px; }
  .status-ok { color:var(--ok); }
  .status-warn { color:var(--warn); }
  .status-bad { color:var(--bad); }
  .pager { display:flex; gap:8px; align-items:center; margin-top:10px; color:var(--dim); }
  .summary { display:flex; gap:24px; margin-bottom:12px; color:var(--dim); }
  .summary b { color:var(--text); }
  .stale { color:var(--warn); margin-left:8px; }
  pre { background:var(--bg); border:1px solid var(--line); border-radius:6px; padding:12px; overflow:auto; }
</style>
</head>
<body>
<header>
  <h1>SLA Monitor</h1>
  <span class="spacer"></span>
  <button id="btn-sync">Sinkronisasi</button>
  <button id="btn-report">Laporan Bulanan</button>
</header>
<main>
  <div class="panel">
    <h2>Ringkasan</h2>
    <div class="summary" id="summary"></div>
  </div>
  <div class="panel" id="panel-down">
    <h2>Site Down</h2>
    <div class="controls">
      <input type="text" data-role="filter" placeholder="Cari site...">
      <input type="date" data-role="from"> <input type="date" data-role="to">
      <span class="stale" data-role="stale"></span>
    </div>
    <table data-role="table"></table>
    <div class="pager" data-role="pager"></div>
  </div>
  <div class="panel" id="panel-up">
    <h2>Site Up</h2>
    <div class="controls">
      <input type="text" data-role="filter" placeholder="Cari site...">
      <span class="stale" data-role="stale"></span>
    </div>
    <table data-role="table"></table>
    <div class="pager" data-role="pager"></div>
  </div>
  <div class="panel" id="panel-report" style="display:none">
    <h2>Laporan</h2>
    <pre id="report-text"></pre>
  </div>
</main>
<script>
(function () {
  'use strict';

  var REFRESH_MS = 5 * 60 * 1000;

  var downCols = [
    { key: 'siteName', label: 'Site' },
    { key: 'siteId', label: 'ID' },
    { key: 'downSince', label: 'Down Sejak', render: function (r) { return r.downAgo || '-'; } },
    { key: 'downSeconds', label: 'Durasi', render: function (r) { return r.downFor || '-'; } },
    { key: 'status', label: 'Status', render: renderDowntime },
    { key: 'slaAvg', label: 'SLA', render: renderSla },
    { key: 'statusSLA', label: 'Status SLA', render: renderStatusSla },
    { key: 'statusSP', label: 'SP', render: function (r) { return r.statusSP || '-'; } }
  ];
  var upCols = [
    { key: 'siteName', label: 'Site' },
    { key: 'siteId', label: 'ID' },
    { key: 'slaAvg', label: 'SLA', render: renderSla },
    { key: 'statusSLA', label: 'Status SLA', render: renderStatusSla },
    { key: 'statusSP', label: 'SP', render: function (r) { return r.statusSP || '-'; } }
  ];

  function renderSla(r) {
    return (r.slaAvg === undefined || r.slaAvg === null) ? '-' : r.slaAvg.toFixed(2) + '%';
  }
  function renderStatusSla(r) {
    if (!r.statusSLA) return '-';
    var cls = r.statusSLA === 'Meet SLA' ? 'status-ok' : (r.statusSLA === 'Fair' ? 'status-warn' : 'status-bad');
    return '<span class="' + cls + '">' + r.statusSLA + '</span>';
  }
  function renderDowntime(r) {
    if (!r.status) return '-';
    var cls = r.status === 'Normal' ? 'status-ok' : (r.status === 'Warning' ? 'status-warn' : 'status-bad');
    return '<span class="' + cls + '">' + r.status + '</span>';
  }

  function makeTable(panelId, endpoint, cols) {
    var panel = document.getElementById(panelId);
    var state = { sort: '', order: '', page: 1 };
    var filterEl = panel.querySelector('[data-role=filter]');
    var fromEl = panel.querySelector('[data-role=from]');
    var toEl = panel.querySelector('[data-role=to]');

    function load(clicked) {
      var params = new URLSearchParams();
      if (filterEl.value) params.set('q', filterEl.value);
      if (state.sort) { params.set('sort', state.sort); params.set('order', state.order); }
      if (clicked) params.set('click', clicked);
      params.set('page', state.page);
      if (fromEl && fromEl.value) params.set('date_from', fromEl.value);
      if (toEl && toEl.value) params.set('date_to', toEl.value);

      fetch(endpoint + '?' + params).then(function (res) { return res.json(); }).then(function (body) {
        if (body.error) { panel.querySelector('[data-role=stale]').textContent = body.error; return; }
        state.sort = body.meta.sort || '';
        state.order = body.meta.order || '';
        state.page = body.meta.page || 1;
        render(body);
        if (body.summary) renderSummary(body.summary);
      });
    }

    function render(body) {
      var table = panel.querySelector('[data-role=table]');
      var html = '<tr>';
      cols.forEach(function (c) {
        var arrow = '';
        if (state.sort === c.key) arrow = state.order === 'asc' ? '&#9650;' : '&#9660;';
        html += '<th data-key="' + c.key + '">' + c.label + '<span class="arrow">' + arrow + '</span></th>';
      });
      html += '</tr>';
      (body.data || []).forEach(function (r) {
        html += '<tr>';
        cols.forEach(function (c) {
          html += '<td>' + (c.render ? c.render(r) : (r[c.key] || '-')) + '</td>';
        });
        html += '</tr>';
      });
      table.innerHTML = html;
      table.querySelectorAll('th').forEach(function (th) {
        th.onclick = function () { load(th.dataset.key); };
      });

      var pager = panel.querySelector('[data-role=pager]');
      pager.innerHTML = '<button data-nav="-1">&laquo;</button>' +
        '<span>Hal ' + body.meta.page + ' / ' + (body.meta.total_pages || 1) + ' (' + body.meta.total + ' baris)</span>' +
        '<button data-nav="1">&raquo;</button>';
      pager.querySelectorAll('button').forEach(function (btn) {
        btn.onclick = function () {
          state.page = Math.max(1, state.page + parseInt(btn.dataset.nav, 10));
          load();
        };
      });

      var stale = panel.querySelector('[data-role=stale]');
      stale.textContent = body.meta.stale ? 'data lama: ' + (body.meta.fetch_error || '') : '';
    }

    var debounce;
    filterEl.oninput = function () {
      clearTimeout(debounce);
      debounce = setTimeout(function () { state.page = 1; load(); }, 300);
    };
    if (fromEl) fromEl.onchange = function () { load(); };
    if (toEl) toEl.onchange = function () { load(); };

    return { load: load };
  }

  function renderSummary(s) {
    var el = document.getElementById('summary');
    var parts = ['Total site: <b>' + s.totalSites + '</b>'];
    if (s.totalSitesDown !== undefined) parts.push('Down: <b>' + s.totalSitesDown + '</b>');
    if (s.totalSitesUp !== undefined) parts.push('Up: <b>' + s.totalSitesUp + '</b>');
    if (s.percentageSitesDown !== undefined) parts.push('Persentase down: <b>' + s.percentageSitesDown.toFixed(2) + '%</b>');
    el.innerHTML = parts.join('<span>&middot;</span>');
  }

  var down = makeTable('panel-down', '/api/v1/sites/down', downCols);
  var up = makeTable('panel-up', '/api/v1/sites/up', upCols);

  function loadAll() { down.load(); up.load(); }

  document.getElementById('btn-sync').onclick = function () {
    var btn = this;
    btn.disabled = true;
    fetch('/api/v1/sla/sync', { method: 'POST' })
      .then(function (res) { return res.json(); })
      .then(function () { loadAll(); })
      .finally(function () { btn.disabled = false; });
  };

  document.getElementById('btn-report').onclick = function () {
    fetch('/api/v1/reports/monthly').then(function (res) { return res.json(); }).then(function (body) {
      var panel = document.getElementById('panel-report');
      panel.style.display = '';
      document.getElementById('report-text').textContent =
        body.error ? body.error : body.data.text;
    });
  };

  loadAll();
  setInterval(loadAll, REFRESH_MS);
  document.addEventListener('visibilitychange', function () {
    if (!document.hidden) loadAll();
  });
})();
</script>
</body>
</html>
`
