package flight

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/flightcast/flightcast/internal/airport"
)

// MinFlightDuration is the shortest accepted gap between departure and arrival.
const MinFlightDuration = 60 * time.Minute

// Profile selects which optional checks a Validator runs. The form and API
// paths deliberately enforce different subsets.
type Profile struct {
	Name string

	// RequireFields rejects empty fields with KindMissingField.
	RequireFields bool

	// RejectPastDates rejects dates before the local date of the clock.
	RejectPastDates bool

	// CheckAirports rejects codes outside the known origin/destination sets.
	CheckAirports bool

	// IdentityFirst runs the same-airport and same-time checks before any
	// parsing, so they win over format errors.
	IdentityFirst bool
}

// Validation profiles.
var (
	// FormProfile is used by the HTML form.
	FormProfile = Profile{Name: "form", RejectPastDates: true, IdentityFirst: true}

	// APIProfile is used by the JSON API.
	APIProfile = Profile{Name: "api", RequireFields: true, CheckAirports: true}
)

// Validator turns Raw input into a Request. It is safe for concurrent use.
type Validator struct {
	profile  Profile
	now      func() time.Time
	validate *validator.Validate
}

// NewValidator creates a validator for the given profile.
// If now is nil, time.Now is used.
func NewValidator(profile Profile, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	// report json tag names as field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})

	return &Validator{
		profile:  profile,
		now:      now,
		validate: v,
	}
}

// Profile returns the profile the validator enforces.
func (v *Validator) Profile() Profile {
	return v.profile
}

// Validate runs the checks in order and returns the first failure.
func (v *Validator) Validate(raw Raw) (Request, error) {
	if v.profile.RequireFields {
		if err := v.checkPresence(raw); err != nil {
			return Request{}, err
		}
	}

	if v.profile.IdentityFirst {
		if err := checkIdentity(raw); err != nil {
			return Request{}, err
		}
	}

	date, dep, arr, err := v.parse(raw)
	if err != nil {
		return Request{}, err
	}

	if !v.profile.IdentityFirst {
		if err := checkIdentity(raw); err != nil {
			return Request{}, err
		}
	}

	if v.profile.RejectPastDates && date.Before(v.today()) {
		return Request{}, newError(KindPastDate, "date", raw.Date,
			"The chosen date cannot be in the past.")
	}

	// Same-day clock arithmetic; overnight flights are not special-cased.
	gap := arr.Minutes() - dep.Minutes()
	if gap < 0 {
		gap = -gap
	}
	if time.Duration(gap)*time.Minute < MinFlightDuration {
		return Request{}, newError(KindFlightTooShort, "sta", raw.STA,
			"Flight time is incorrect Please use correct time")
	}

	if v.profile.CheckAirports && (!airport.IsOrigin(raw.Origin) || !airport.IsDestination(raw.Destination)) {
		return Request{}, newError(KindUnknownAirport, "from_city", raw.Origin,
			fmt.Sprintf("Invalid city code: %s or %s.", raw.Origin, raw.Destination))
	}

	return Request{
		Date:        date,
		Departure:   dep,
		Arrival:     arr,
		Origin:      raw.Origin,
		Destination: raw.Destination,
	}, nil
}

func checkIdentity(raw Raw) error {
	if raw.Origin == raw.Destination {
		return newError(KindSameAirport, "to_city", raw.Destination,
			"Departure and arrival airports cannot be the same.")
	}
	if raw.STD == raw.STA {
		return newError(KindSameTime, "sta", raw.STA,
			"Scheduled departure time and scheduled arrival time cannot be the same.")
	}
	return nil
}

func (v *Validator) checkPresence(raw Raw) error {
	err := v.validate.Struct(raw)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		return newError(KindMissingField, field, "", "Missing required field: "+field+".")
	}
	return newError(KindMissingField, "", "", "Missing required fields.")
}

func (v *Validator) parse(raw Raw) (time.Time, TimeOfDay, TimeOfDay, error) {
	checks := []struct {
		field, value, layout, hint string
	}{
		{"date", raw.Date, DateLayout, "YYYY-MM-DD"},
		{"std", raw.STD, TimeLayout, "HH:MM"},
		{"sta", raw.STA, TimeLayout, "HH:MM"},
	}
	for _, c := range checks {
		if err := v.validate.Var(c.value, "datetime="+c.layout); err != nil {
			return time.Time{}, TimeOfDay{}, TimeOfDay{}, newError(KindInvalidFormat, c.field, c.value,
				fmt.Sprintf("Invalid format for %s: %q (expected %s).", c.field, c.value, c.hint))
		}
	}

	// Layouts were checked above.
	date, _ := time.Parse(DateLayout, raw.Date)
	std, _ := time.Parse(TimeLayout, raw.STD)
	sta, _ := time.Parse(TimeLayout, raw.STA)

	return date,
		TimeOfDay{Hour: std.Hour(), Minute: std.Minute()},
		TimeOfDay{Hour: sta.Hour(), Minute: sta.Minute()},
		nil
}

// today returns the clock's local calendar date as a UTC midnight, matching
// how parsed request dates are represented.
func (v *Validator) today() time.Time {
	y, m, d := v.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
