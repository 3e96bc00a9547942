package render

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
)

type Templates struct {
	templates *template.Template
	fsys      fs.FS
	reload    bool
	logger    zerolog.Logger
}

// GetTemplates parses every template under templates/ in fsys. When reload
// is set they are parsed again before each render.
func GetTemplates(fsys fs.FS, reload bool, logger zerolog.Logger) (*Templates, error) {
	tmpls := &Templates{fsys: fsys, reload: reload, logger: logger}
	if err := tmpls.load(); err != nil {
		return nil, err
	}
	return tmpls, nil
}

func (tmpls *Templates) RenderHTML(w http.ResponseWriter, tmplName string, data interface{}) {
	tmpls.RenderHTMLStatus(w, http.StatusOK, tmplName, data)
}

func (tmpls *Templates) RenderHTMLStatus(w http.ResponseWriter, status int, tmplName string, data interface{}) {
	if tmpls.reload {
		if err := tmpls.load(); err != nil {
			tmpls.logger.Error().Err(err).Msg("reloading templates")
		}
	}
	buff := bytes.NewBuffer([]byte{})
	err := tmpls.templates.ExecuteTemplate(buff, tmplName, data)
	if err != nil && tmplName != "404" {
		tmpls.logger.Error().Err(err).Str("template", tmplName).Msg("rendering template")
		tmpls.RenderHTMLStatus(w, http.StatusNotFound, "404", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buff.Bytes())
}

func markdown(s string) template.HTML {
	var b bytes.Buffer
	if err := goldmark.Convert([]byte(s), &b); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(b.String())
}

func naturaltime(t time.Time) string {
	return humanize.Time(t)
}

func percent(part, total int) string {
	if total <= 0 {
		return "0%"
	}
	return humanize.FtoaWithDigits(float64(part)*100/float64(total), 1) + "%"
}

func (tmpls *Templates) load() error {
	t, err := template.New("").Funcs(template.FuncMap{
		"markdown":    markdown,
		"naturaltime": naturaltime,
		"percent":     percent,
	}).ParseFS(tmpls.fsys, "templates/*.html")
	if err != nil {
		return err
	}
	tmpls.templates = t
	return nil
}
