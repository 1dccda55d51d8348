package echo

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/outgoapp/outgo/domain"
)

// Terminal pages for the popup handshake. Each posts exactly one message
// to the opener and then closes itself; the opener treats the first
// message as final, so the pages never post twice.
var (
	successPageTmpl = template.Must(template.New("success").Parse(successPageHTML))
	cancelPageTmpl  = template.Must(template.New("cancel").Parse(cancelPageHTML))
)

type successPageData struct {
	ClientURL      string
	Token          string
	UserJSON       template.JS
	ForceSelection bool
}

type cancelPageData struct {
	ClientURL string
}

func (a *API) renderSuccessPage(c echo.Context, clientURL, token string, profile *domain.Profile, forceSelection bool) error {
	userJSON, err := json.Marshal(profile)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Authentication failed"})
	}
	return renderTerminalPage(c, successPageTmpl, successPageData{
		ClientURL:      clientURL,
		Token:          token,
		UserJSON:       template.JS(userJSON),
		ForceSelection: forceSelection,
	})
}

func (a *API) renderCancelPage(c echo.Context, clientURL string) error {
	return renderTerminalPage(c, cancelPageTmpl, cancelPageData{ClientURL: clientURL})
}

func renderTerminalPage(c echo.Context, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Authentication failed"})
	}

	h := c.Response().Header()
	h.Set("Cache-Control", "no-store")
	// The page must keep a handle on its opener to deliver the result.
	h.Set("Cross-Origin-Opener-Policy", "unsafe-none")
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

const successPageHTML = `<!DOCTYPE html>
<html>
<head>
<title>Authentication Successful</title>
<style>
body { font-family: sans-serif; text-align: center; padding-top: 4em; color: #333; }
</style>
</head>
<body>
<h2>Authentication successful</h2>
<p>You can close this window.</p>
<script>
(function () {
  var payload = {
    token: {{.Token}},
    user: {{.UserJSON}}
  };
  var target = {{.ClientURL}};
  if (window.opener) {
    try {
      window.opener.postMessage(payload, target);
    } catch (e) {
      // Opener gone or origin mismatch; nothing more to deliver.
    }
  }
  {{if .ForceSelection}}
  // Account was picked explicitly; drop the session hint so the next
  // handshake shows the chooser again instead of auto-selecting.
  try { document.cookie = "g_state=; max-age=0; path=/"; } catch (e) {}
  {{end}}
  setTimeout(function () { window.close(); }, 1000);
})();
</script>
</body>
</html>
`

const cancelPageHTML = `<!DOCTYPE html>
<html>
<head>
<title>Authentication Canceled</title>
<style>
body { font-family: sans-serif; text-align: center; padding-top: 4em; color: #333; }
</style>
</head>
<body>
<h2>Authentication canceled</h2>
<p>You can close this window.</p>
<script>
(function () {
  if (window.opener) {
    try {
      window.opener.postMessage({ canceled: true }, {{.ClientURL}});
    } catch (e) {}
  }
  setTimeout(function () { window.close(); }, 1000);
})();
</script>
</body>
</html>
`
