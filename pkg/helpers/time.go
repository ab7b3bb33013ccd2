package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

const localTimeLayout = "02 January 2006, 15:04 MST"

// LocalizeTimesIfPossible rewrites the human readable times of an email into
// the timezone of the requesting IP. Lookup failures leave data untouched.
func LocalizeTimesIfPossible(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) {
	ipVal, ok := data["IP"]
	if !ok || ipVal == nil || fmt.Sprintf("%v", ipVal) == "" {
		return
	}
	g, err := resolver.Lookup(ctx, fmt.Sprintf("%v", ipVal))
	if err != nil || strings.TrimSpace(g.Timezone) == "" {
		return
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return
	}
	if t, ok := parseTimeAny(data["ExpiresAt"]); ok {
		data["ExpiresAtText"] = t.In(loc).Format(localTimeLayout)
	}
	if t, ok := parseTimeAny(data["TimeAt"]); ok {
		data["Time"] = t.In(loc).Format(localTimeLayout)
	}
	if loc, ok := data["Location"]; !ok || loc == nil || fmt.Sprintf("%v", loc) == "" {
		data["Location"] = mailtpl.FormatGeo(g)
	}
}

func parseTimeAny(v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	s := fmt.Sprintf("%v", v)
	for _, l := range []string{time.RFC3339Nano, "2006-01-02 15:04:05 -0700 MST", "2006-01-02 15:04:05 -0700"} {
		if t, err := time.Parse(l, s); err == nil && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}
