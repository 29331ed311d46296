package notify

import (
	"bytes"
	"fmt"
	html "html/template"
	text "text/template"

	"burza/internal/events"
)

// TemplateParams feed one rendered notification.
type TemplateParams struct {
	FirstName    string
	LastName     string
	TableCount   int
	ContactEmail string
}

type kindSpec struct {
	Subject     string
	HeaderColor string
	Highlight   string
	CountLabel  string
	Body        string
}

// Wording follows the Czech copy the booking site always used.
var kinds = map[string]kindSpec{
	events.EventReservationCreated: {
		Subject:     "Potvrzení rezervace stolů",
		HeaderColor: "#2563eb",
		Highlight:   "Rezervace čeká na schválení",
		CountLabel:  "Počet rezervovaných stolů",
		Body:        "Vaše rezervace byla úspěšně přijata a čeká na schválení administrátorem. O výsledku Vás budeme informovat e-mailem.",
	},
	events.EventReservationApproved: {
		Subject:     "Schválení rezervace stolů",
		HeaderColor: "#059669",
		Highlight:   "Rezervace je potvrzena",
		CountLabel:  "Počet schválených stolů",
		Body:        "Vaše stoly jsou nyní rezervované a připravené k použití.",
	},
	events.EventReservationRejected: {
		Subject:     "Zamítnutí rezervace stolů",
		HeaderColor: "#dc2626",
		Highlight:   "Rezervace nebyla schválena",
		CountLabel:  "Počet zamítnutých stolů",
		Body:        "Stoly jsou nyní opět volné pro rezervaci.",
	},
	events.EventReservationCancelled: {
		Subject:     "Zrušení rezervace",
		HeaderColor: "#dc2626",
		Highlight:   "Vaše rezervace byla zrušena administrátorem.",
		CountLabel:  "Počet zrušených stolů",
		Body:        "Stoly jsou nyní opět volné pro rezervaci.",
	},
}

const htmlLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: {{.HeaderColor}}; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9fafb; }
        .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
        .highlight { background-color: #dbeafe; padding: 10px; border-radius: 5px; margin: 15px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Subject}}</h1>
        </div>
        <div class="content">
            <p>Dobrý den {{.FirstName}} {{.LastName}},</p>
            <div class="highlight">
                <strong>{{.Highlight}}</strong><br>
                {{.CountLabel}}: {{.TableCount}}
            </div>
            <p>{{.Body}}</p>
            <p>V případě dotazů nás kontaktujte na <a href="mailto:{{.ContactEmail}}">{{.ContactEmail}}</a></p>
        </div>
        <div class="footer">
            <p>Rezervace stolů - {{.ContactEmail}}</p>
        </div>
    </div>
</body>
</html>
`

const textLayout = `{{.Subject}}

Dobrý den {{.FirstName}} {{.LastName}},

{{.Highlight}}
{{.CountLabel}}: {{.TableCount}}

{{.Body}}

V případě dotazů nás kontaktujte na {{.ContactEmail}}

--
Rezervace stolů - {{.ContactEmail}}
`

var (
	htmlTmpl = html.Must(html.New("email").Parse(htmlLayout))
	textTmpl = text.Must(text.New("email").Parse(textLayout))
)

type templateData struct {
	kindSpec
	TemplateParams
}

// Render produces the subject and both bodies for one notification kind.
func Render(kind string, params TemplateParams) (subject, htmlBody, textBody string, err error) {
	spec, ok := kinds[kind]
	if !ok {
		return "", "", "", fmt.Errorf("unknown notification kind: %s", kind)
	}

	data := templateData{kindSpec: spec, TemplateParams: params}

	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", "", fmt.Errorf("render html body: %w", err)
	}

	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", "", fmt.Errorf("render text body: %w", err)
	}

	return spec.Subject, htmlBuf.String(), textBuf.String(), nil
}
