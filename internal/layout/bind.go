// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

// BindingName is the only binding key the system resolves today. An
// element bound to it has its text replaced by the student's name at
// render time.
const BindingName = "name"

// BindFields returns a new element sequence with every bound element's
// text replaced from the given field map. Elements with an empty or
// unknown binding pass through unchanged; the input slice is not mutated.
func BindFields(items []Element, fields map[string]string) []Element {
	out := make([]Element, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Binding == "" {
			continue
		}
		if v, ok := fields[out[i].Binding]; ok {
			out[i].Text = v
		}
	}
	return out
}
