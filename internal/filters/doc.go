// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters narrows the rows of a change log, run list or entity query
// with --filter expressions.
//
// Each expression is key, optional operator, target. Expressions are joined
// with commas, or with IFCTRACK_FILTER_DELIM when targets contain commas.
//
//   - = : exact match
//   - ~ : case-insensitive match
//   - ^ : prefix match
//   - < : less than (numeric when the value is a number)
//   - > : greater than (numeric when the value is a number)
//   - @ : contains (substring, or member of a list or map)
//   - / : regular expression match
//
// Every operator can be negated with a leading !. A key without an operator
// keeps rows where the key is present. Null values compare as the empty
// string.
//
// Examples:
//
//   - "ChangeType=Modified"
//   - "User~amiraelsaeed"
//   - "GlobalId^1Proxy"
//   - "OldReference="
//   - "Reference!/^TWR-"
//
// Filter keys match the OutputKey of an attr (see the attrs package), so a
// column renamed with --attrs is filtered by its new name. A key naming no
// attr is reported and ignored.
package filters
