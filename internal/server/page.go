package server

// indexHTML is the single-page front-end: upload an image, enter prompts,
// run detection, view the annotated result and download the archive.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Object Detection with VisionAgent</title>
<style>
  body { font-family: sans-serif; margin: 0; background: #f5f6f8; }
  .container { max-width: 1100px; margin: 0 auto; padding: 1rem; }
  h2 { text-align: center; margin: 1.5rem 0; }
  .row { display: flex; gap: 1rem; flex-wrap: wrap; }
  .card { flex: 1 1 480px; background: #fff; border: 1px solid #ddd; border-radius: 6px;
          margin-bottom: 1rem; box-shadow: 0 1px 2px rgba(0,0,0,.05); }
  .card-header { padding: .6rem 1rem; border-bottom: 1px solid #ddd; font-weight: 600; }
  .card-body { padding: 1rem; }
  input[type=text] { width: 100%; padding: .4rem; box-sizing: border-box; }
  button { width: 100%; padding: .5rem; margin-top: .75rem; background: #0d6efd;
           color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
  button:disabled { background: #9bbcf5; }
  img { max-width: 100%; height: auto; border: 2px solid #ccc; }
  #summary { white-space: pre-wrap; }
  #download { display: none; background: #198754; }
  .failures { color: #b02a37; white-space: pre-wrap; }
</style>
</head>
<body>
<div class="container">
  <h2>Object Detection with VisionAgent</h2>
  <div class="row">
    <div class="card">
      <div class="card-header">Upload an Image</div>
      <div class="card-body">
        <input type="file" id="image" accept="image/*">
        <div id="preview" style="text-align:center;margin-top:1rem">No image uploaded yet.</div>
      </div>
    </div>
    <div class="card">
      <div class="card-header">Detection Options</div>
      <div class="card-body">
        <label for="prompts">Prompts (comma-separated)</label>
        <input type="text" id="prompts" placeholder='E.g. "green pepper, round table"'>
        <button id="detect">Detect Objects</button>
      </div>
    </div>
  </div>
  <div class="card">
    <div class="card-header">Detection Results</div>
    <div class="card-body">
      <div id="annotated" style="text-align:center"></div>
      <div id="failures" class="failures"></div>
      <div id="summary"></div>
      <button id="download">Download Results</button>
    </div>
  </div>
</div>
<script>
const imageInput = document.getElementById('image');
const preview = document.getElementById('preview');
const detectBtn = document.getElementById('detect');
const downloadBtn = document.getElementById('download');

imageInput.addEventListener('change', () => {
  preview.innerHTML = '';
  document.getElementById('annotated').innerHTML = '';
  document.getElementById('summary').textContent = '';
  document.getElementById('failures').textContent = '';
  downloadBtn.style.display = 'none';
  const file = imageInput.files[0];
  if (!file) { preview.textContent = 'No image uploaded yet.'; return; }
  const img = document.createElement('img');
  img.src = URL.createObjectURL(file);
  preview.appendChild(img);
});

detectBtn.addEventListener('click', async () => {
  const summary = document.getElementById('summary');
  const annotated = document.getElementById('annotated');
  const failures = document.getElementById('failures');
  annotated.innerHTML = '';
  failures.textContent = '';
  downloadBtn.style.display = 'none';

  const form = new FormData();
  const file = imageInput.files[0];
  if (file) form.append('image', file);
  form.append('prompts', document.getElementById('prompts').value || '');

  detectBtn.disabled = true;
  summary.textContent = 'Detecting...';
  try {
    const resp = await fetch('/api/detect', { method: 'POST', body: form });
    const data = await resp.json();
    if (data.message) {
      summary.textContent = data.message;
      return;
    }
    summary.textContent = data.summary || '';
    if (data.failures) {
      failures.textContent = Object.entries(data.failures)
        .map(([p, e]) => 'Prompt "' + p + '" failed: ' + e).join('\n');
    }
    if (data.annotated_image) {
      const img = document.createElement('img');
      img.src = data.annotated_image;
      annotated.appendChild(img);
      downloadBtn.style.display = 'block';
    }
  } catch (err) {
    summary.textContent = 'Request failed: ' + err;
  } finally {
    detectBtn.disabled = false;
  }
});

downloadBtn.addEventListener('click', () => {
  window.location.href = '/api/download';
});
</script>
</body>
</html>
`
