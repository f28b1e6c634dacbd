package web

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"airbnb-dashboard/models"
)

// Query parameter names shared by the dashboard form, the JSON API and
// snapshot URLs.
const (
	paramNeighbourhood   = "neighbourhood"
	paramRoomType        = "room_type"
	paramPriceMin        = "price_min"
	paramPriceMax        = "price_max"
	paramAvailabilityMin = "availability_min"
	paramAvailabilityMax = "availability_max"
	paramRPMMin          = "rpm_min"
	paramRPMMax          = "rpm_max"
	paramTop             = "top"
	paramBins            = "bins"
	// paramApplied marks a submitted form: absent category lists then mean
	// an empty selection rather than "use the defaults".
	paramApplied = "applied"
)

var validate = validator.New()

// DisplayOptions sizes the cheapest table and the price histogram.
type DisplayOptions struct {
	Top  int `validate:"min=1,max=100"`
	Bins int `validate:"min=1,max=200"`
}

// ParseCriteria builds FilterCriteria from query parameters. Missing bounds
// and, unless the form was applied, missing category lists take the
// values from defaults.
func ParseCriteria(q url.Values, defaults models.FilterCriteria) (models.FilterCriteria, error) {
	c := defaults.Clone()
	applied := q.Get(paramApplied) == "1"

	if vals, ok := q[paramNeighbourhood]; ok || applied {
		c.Neighbourhoods = nonEmpty(vals)
	}
	if vals, ok := q[paramRoomType]; ok || applied {
		c.RoomTypes = nonEmpty(vals)
	}

	bounds := []struct {
		name string
		dst  *float64
	}{
		{paramPriceMin, &c.Price.Min},
		{paramPriceMax, &c.Price.Max},
		{paramAvailabilityMin, &c.Availability.Min},
		{paramAvailabilityMax, &c.Availability.Max},
		{paramRPMMin, &c.ReviewsPerMonth.Min},
		{paramRPMMax, &c.ReviewsPerMonth.Max},
	}
	for _, b := range bounds {
		raw := strings.TrimSpace(q.Get(b.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			return c, errInvalidParameter(b.name, raw)
		}
		*b.dst = v
	}
	return c, nil
}

// ParseDisplayOptions reads top and bins, falling back to defaults.
func ParseDisplayOptions(q url.Values, defaults DisplayOptions) (DisplayOptions, error) {
	opts := defaults
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{paramTop, &opts.Top},
		{paramBins, &opts.Bins},
	} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, errInvalidParameter(p.name, raw)
		}
		*p.dst = n
	}

	if err := validate.Struct(opts); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[strings.ToLower(fe.Field())] = fe.Tag() + "=" + fe.Param()
			}
			return opts, errValidation(fields)
		}
		return opts, errValidation(err.Error())
	}
	return opts, nil
}

// EncodeCriteria is the inverse of ParseCriteria.
func EncodeCriteria(c models.FilterCriteria) url.Values {
	v := url.Values{}
	v.Set(paramApplied, "1")
	for _, n := range c.Neighbourhoods {
		v.Add(paramNeighbourhood, n)
	}
	for _, rt := range c.RoomTypes {
		v.Add(paramRoomType, rt)
	}
	v.Set(paramPriceMin, formatFloat(c.Price.Min))
	v.Set(paramPriceMax, formatFloat(c.Price.Max))
	v.Set(paramAvailabilityMin, formatFloat(c.Availability.Min))
	v.Set(paramAvailabilityMax, formatFloat(c.Availability.Max))
	v.Set(paramRPMMin, formatFloat(c.ReviewsPerMonth.Min))
	v.Set(paramRPMMax, formatFloat(c.ReviewsPerMonth.Max))
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// nonEmpty drops blank values; an HTML form may send neighbourhood= for an
// empty selection.
func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
