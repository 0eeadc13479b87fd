package api

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>frontier</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; min-height: 6rem; }
#reply { white-space: pre-wrap; border: 1px solid #ccc; border-radius: 4px; padding: 1rem; min-height: 6rem; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>frontier</h1>
<form id="ask">
<label for="message">Your message:</label>
<textarea id="message" name="message"></textarea>
<label for="model">Select model:</label>
<select id="model" name="model">
{{- range .Backends}}
<option value="{{.}}"{{if eq . $.Default}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
<button type="submit">Submit</button>
</form>
<h2>Response</h2>
<div id="reply"></div>
<script>
const form = document.getElementById("ask");
const reply = document.getElementById("reply");
const turns = [];

form.addEventListener("submit", async (e) => {
  e.preventDefault();
  const message = document.getElementById("message").value;
  const model = document.getElementById("model").value;
  reply.className = "";
  reply.textContent = "";

  const resp = await fetch("/chat", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({message, model, history: turns}),
  });
  if (!resp.ok) {
    reply.className = "error";
    reply.textContent = (await resp.json()).error;
    return;
  }

  const reader = resp.body.getReader();
  const decoder = new TextDecoder();
  let buf = "";
  let text = "";
  for (;;) {
    const {done, value} = await reader.read();
    if (done) break;
    buf += decoder.decode(value, {stream: true});
    let i;
    while ((i = buf.indexOf("\n\n")) >= 0) {
      const frame = buf.slice(0, i);
      buf = buf.slice(i + 2);
      let type = "message", data = "";
      for (const line of frame.split("\n")) {
        if (line.startsWith("event: ")) type = line.slice(7);
        if (line.startsWith("data: ")) data += line.slice(6);
      }
      if (type === "error") {
        reply.className = "error";
        const failure = JSON.parse(data);
        reply.textContent = (failure.partial || text) + "\n\n" + failure.error;
      } else {
        text = JSON.parse(data)[0];
        reply.textContent = text;
      }
    }
  }
  turns.push({role: "user", content: message}, {role: "assistant", content: text});
});
</script>
</body>
</html>
`))

// handleIndex serves the chat page.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, s.config); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("rendering page")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
