package handler

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/flightcast/flightcast/internal/airport"
	"github.com/flightcast/flightcast/internal/api/models"
	"github.com/flightcast/flightcast/internal/api/response"
	"github.com/flightcast/flightcast/internal/flight"
	"github.com/flightcast/flightcast/internal/pipeline"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// maxFormBody caps the urlencoded form body.
const maxFormBody = 16 << 10

// formPage is the data rendered into the index template.
type formPage struct {
	Form         flight.Raw
	Origins      []string
	Destinations []string

	// Error is shown as plain text after "Error: ".
	Error string

	// Message carries highlight markup around escaped user values.
	Message template.HTML
	Status  string
}

// FormHandler serves the HTML form.
type FormHandler struct {
	predictor Predictor
	log       zerolog.Logger
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(predictor Predictor, log zerolog.Logger) *FormHandler {
	return &FormHandler{predictor: predictor, log: log}
}

// Show handles GET / and renders an empty form.
func (h *FormHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, newFormPage(flight.Raw{}))
}

// Submit handles POST /. Validation failures are rendered into the page with
// status 200; only unexpected failures produce a 500.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		page := newFormPage(flight.Raw{})
		page.Error = "The submitted form could not be read."
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	raw := flight.Raw{
		Date:        r.PostFormValue("date"),
		STD:         r.PostFormValue("std"),
		STA:         r.PostFormValue("sta"),
		Origin:      r.PostFormValue("from_city"),
		Destination: r.PostFormValue("to_city"),
	}
	page := newFormPage(raw)

	result, err := h.predictor.Predict(r.Context(), flight.FormProfile, raw)
	if err != nil {
		if verr, ok := flight.AsValidationError(err); ok {
			page.Error = verr.Message
			h.render(w, r, http.StatusOK, page)
			return
		}

		logInternal(h.log, r, err)
		page.Error = models.MessageInternal
		h.render(w, r, http.StatusInternalServerError, page)
		return
	}

	page.Status = result.Status()
	page.Message = StatusMessage(result.Label, raw)
	h.render(w, r, http.StatusOK, page)
}

func (h *FormHandler) render(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	if err := response.HTML(w, r, status, indexTemplate, page); err != nil {
		h.log.Error().Err(err).Msg("rendering form page")
	}
}

func newFormPage(raw flight.Raw) formPage {
	return formPage{
		Form:         raw,
		Origins:      airport.Origins(),
		Destinations: airport.Destinations(),
	}
}

// StatusMessage builds the sentence shown for a prediction. User-supplied
// values are HTML-escaped; only the highlight spans are markup.
func StatusMessage(label pipeline.Label, raw flight.Raw) template.HTML {
	esc := template.HTMLEscapeString
	date, std := esc(raw.Date), esc(raw.STD)
	from, to := esc(raw.Origin), esc(raw.Destination)

	var msg string
	if label == pipeline.LabelDelayed {
		msg = fmt.Sprintf(
			"The flights from <span class='highlight'>%s</span> to <span class='highlight'>%s</span> "+
				"could be <span class='highlight'>delayed</span> on %s at %s.",
			from, to, date, std)
	} else {
		msg = fmt.Sprintf(
			"The flights on %s at %s from <span class='highlight'>%s</span> "+
				"to <span class='highlight'>%s</span> are <span class='highlight'>On time.</span>",
			date, std, from, to)
	}

	//nolint:gosec // every interpolated value is escaped above
	return template.HTML(msg)
}
