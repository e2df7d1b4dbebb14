package render

import (
	"encoding/json"
	"html/template"
	"regexp"
	"strconv"
	"time"
)

// crawlerPattern matches user agents that must see the static document instead
// of being sent to the interactive page.
const crawlerPattern = `bot|crawl|spider|slurp|facebookexternalhit|facebot|embedly|` +
	`outbrain|pinterest|vkshare|w3c_validator|whatsapp|lighthouse|google-inspectiontool|preview`

var crawlerRE = regexp.MustCompile(`(?i)` + crawlerPattern)

// IsCrawler reports whether ua would be left on the static snapshot.
func IsCrawler(ua string) bool {
	return crawlerRE.MatchString(ua)
}

// redirectScript sends browsers to target after delay and leaves crawlers alone.
func redirectScript(target string, delay time.Duration) template.JS {
	quoted, err := json.Marshal(target)
	if err != nil {
		quoted = []byte(`"/"`)
	}
	script := "(function () {\n" +
		"  var ua = (typeof navigator !== \"undefined\" && navigator.userAgent) || \"\";\n" +
		"  if (/" + crawlerPattern + "/i.test(ua)) { return; }\n" +
		"  setTimeout(function () { window.location.replace(" + string(quoted) + "); }, " +
		strconv.FormatInt(delay.Milliseconds(), 10) + ");\n" +
		"})();"
	return template.JS(script) //nolint:gosec // target is JSON encoded
}
