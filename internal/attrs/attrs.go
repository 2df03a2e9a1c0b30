// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ifctrack/ifctrack/internal/log"
)

// LocalLayout is how the t transform renders timestamps.
const LocalLayout = "2006-01-02 15:04:05 MST"

var lengthSpec = regexp.MustCompile(`-?\d+`)

// Attr is one column of rendered output. Key addresses a value in the JSON
// row (see driller for the path syntax).
type Attr struct {
	// The JSON key to extract from the row.
	Key string `yaml:"key" json:"Key"`
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool `yaml:"include" json:"Include"`
	// The key to use in the output. This is also the column title when
	// output=text.
	OutputKey string `yaml:"outputKey" json:"OutputKey"`
	// Transformation spec to apply to the output value.
	TransformSpec string `yaml:"transformSpec" json:"TransformSpec"`
}

// Transform applies the attribute's transform spec to a value and returns the
// transformed result. Only strings are transformed.
//
//	t    RFC 3339 timestamp to local time
//	T    RFC 3339 timestamp to time ago
//	l/u  lower or upper case; the last one wins
//	N    truncate to N characters
//	-N   shorten to N characters by eliding the middle
func (a *Attr) Transform(value interface{}) interface{} {
	result, ok := value.(string)
	if !ok {
		log.Tracef("non-string value: value=%v", value)
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "tT") {
		if ts, err := time.Parse(time.RFC3339, result); err == nil {
			if strings.Contains(a.TransformSpec, "T") {
				result = humanize.Time(ts)
				log.Tracef("time ago: result=%s", result)
			} else {
				result = ts.Local().Format(LocalLayout)
				log.Tracef("time local: result=%s", result)
			}
		}
	}

	// A global case transformation is prepended, so the attr's own spec comes
	// last and wins. IOW... --attrs '*::U,User::l' will be lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")
	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	if match := lengthSpec.FindAllString(a.TransformSpec, -1); len(match) != 0 {
		// The last (overriding) length wins.
		l, _ := strconv.Atoi(match[len(match)-1])
		abs := int(math.Abs(float64(l)))
		runes := []rune(result)
		if abs > 0 && len(runes) > abs {
			if l < 0 && abs >= 4 {
				keep := abs/2 - 1
				result = string(runes[:keep]) + ".." + string(runes[len(runes)-keep:])
				log.Tracef("length middle: result=%s", result)
			} else {
				result = string(runes[:abs])
				log.Tracef("length trunc: result=%s", result)
			}
		}
	}

	return result
}

// AttrList is a collection of Attr used to shape output fields.
type AttrList []Attr

// Set parses each comma separated key:output:transform spec from --attrs and
// adds it to the list. A key prefixed with ! is kept for filtering and
// sorting but not shown. A spec for a key already present updates it.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

specloop:
	for _, spec := range strings.Split(value, ",") {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		attr := Attr{Include: true}

		fields := strings.Split(spec, ":")
		if len(fields) > 3 {
			return fmt.Errorf("invalid attr spec %q: want key[:output[:transform]]", spec)
		}

		attr.Key = strings.TrimPrefix(strings.TrimSpace(fields[jsonIdx]), ".")
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = strings.TrimPrefix(attr.Key[1:], ".")
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		// The output key defaults to the last segment of the key.
		switch {
		case len(fields) == 1 || fields[outputIdx] == "":
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		default:
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}
		log.Tracef("attr parsed: key=%s output=%s spec=%s include=%v",
			attr.Key, attr.OutputKey, attr.TransformSpec, attr.Include)

		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the spec of the "*" entry, if any, to every
// attr in the list.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""
	for i := range *a {
		if (*a)[i].Key == "*" {
			spec = (*a)[i].TransformSpec
			break
		}
	}
	if spec == "" {
		return nil
	}

	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
	log.Debugf("global spec prepended: spec=%s", spec)
	return nil
}

// Included returns the output keys shown as columns, in order.
func (a AttrList) Included() []string {
	var keys []string
	for _, attr := range a {
		if attr.Include {
			keys = append(keys, attr.OutputKey)
		}
	}
	return keys
}

// String returns a string representation of the AttrList. This matches the
// format of the --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Type returns the flag type for use with the flag.Value interface.
func (a *AttrList) Type() string { return "list" }
