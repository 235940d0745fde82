package submit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/sitepush"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatDuration formats a duration as h:mm:ss, or m:ss under an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// describe summarizes an outcome for the operator.
func describe(out sitepush.Outcome) string {
	switch {
	case out.StatusCode == 0 && out.Err != nil:
		return out.Err.Error()
	case out.Message != "":
		return fmt.Sprintf("%d %s", out.StatusCode, out.Message)
	case out.StatusCode != 0:
		return fmt.Sprintf("%d %s", out.StatusCode, http.StatusText(out.StatusCode))
	default:
		return out.Status().String()
	}
}

// Describe summarizes an outcome for the operator.
func Describe(out sitepush.Outcome) string {
	return describe(out)
}
