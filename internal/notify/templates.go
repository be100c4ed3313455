package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/okian/poprzeczka/internal/domain/model"
)

var templates = template.Must(template.New("notify").Parse(`
{{define "risk"}}<p>Cześć {{.Participant}},</p>
<p>w edycji <b>{{.Edition}}</b> masz dwa niezaliczone dni z rzędu (dzień {{.PrevDay}} i {{.Day}}).
Jeszcze jeden i odpadasz.</p>{{end}}

{{define "elimination"}}<p>Cześć {{.Participant}},</p>
<p>w edycji <b>{{.Edition}}</b> masz trzy niezaliczone dni z rzędu (dni {{.FirstDay}} do {{.Day}}).
Niestety odpadasz z rywalizacji.</p>{{end}}

{{define "broadcast"}}<p>Oficjalne wyniki edycji <b>{{.Edition}}</b> po dniu {{.Day}}:</p>
<table>
<tr><th>#</th><th>Uczestnik</th><th>Wynik</th><th>Status</th></tr>
{{range .Rows}}<tr><td>{{.Rank}}</td><td>{{.Participant}}</td><td>{{.Score}}</td><td>{{if .Eliminated}}odpadł(a) w dniu {{.EliminatedOn}}{{else if eq .State "at_risk"}}zagrożony(a){{else}}w grze{{end}}</td></tr>
{{end}}</table>{{end}}
`))

type alertData struct {
	Participant string
	Edition     string
	Day         int
	PrevDay     int
	FirstDay    int
}

type broadcastData struct {
	Edition string
	Day     int
	Rows    []model.Row
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
	}
	return buf.String(), nil
}
