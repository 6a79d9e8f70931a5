package previewserver

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>duocam</title>
<style>
body { font-family: sans-serif; background: #111; color: #eee; margin: 1em; }
img { max-width: 100%; background: #000; display: block; margin-bottom: 1em; }
button { margin-right: .5em; }
pre { background: #222; padding: .5em; }
</style>
</head>
<body>
<h1>duocam</h1>
<img id="preview" src="/stream" alt="preview">
<div>
  <input id="devices" placeholder="0,1">
  <button onclick="command('start')">Start</button>
  <button onclick="command('preview')">Preview</button>
  <button onclick="command('record')">Record</button>
  <button onclick="command('stop-recording')">Stop recording</button>
  <button onclick="command('stop')">Stop</button>
</div>
<pre id="status"></pre>
<script>
async function command(name) {
  const raw = document.getElementById('devices').value.trim();
  const body = raw ? JSON.stringify({devices: raw.split(',').map(s => s.trim())}) : '';
  const res = await fetch('/api/' + name, {method: 'POST', body: body});
  show(await res.json());
}
async function refresh() {
  const res = await fetch('/api/status');
  show(await res.json());
}
function show(v) {
  document.getElementById('status').textContent = JSON.stringify(v, null, 2);
}
refresh();
setInterval(refresh, 1000);
</script>
</body>
</html>
`
