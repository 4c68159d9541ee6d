package metric

import (
	"strconv"
	"strings"
)

// labelValueEscaper escapes label values as the text format requires.
// Metric names and label keys are written as given.
var labelValueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// formatLine renders one sample in the Prometheus text format:
//
//	name{k1="v1",k2="v2"} value
//
// The label block is omitted when there are no labels.
func formatLine(s Sample) string {
	var b strings.Builder
	b.WriteString(s.Name)

	if len(s.Labels) > 0 {
		b.WriteByte('{')
		for i, l := range s.Labels {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(l.Key)
			b.WriteString(`="`)
			b.WriteString(labelValueEscaper.Replace(l.Value))
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}

	b.WriteByte(' ')
	b.WriteString(FormatValue(s.Value))
	return b.String()
}

// FormatValue renders v in its shortest decimal form without an exponent.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
