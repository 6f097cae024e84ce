package telegram

import (
	"fmt"
	"sort"
	"strings"

	"medassist/api/internal/flow/types"
)

var profileKeys = []string{"name", "age", "gender", "weight", "height", "notes"}

// applyProfile разбирает "key=value ..." и правит необязательные поля формы.
// notes забирает остаток строки целиком. Нечисловые возраст/вес/рост и пол вне
// male|female|other сбрасываются в nil, как в форме.
func applyProfile(form *types.SymptomForm, args string) error {
	rest := strings.TrimSpace(args)
	if strings.EqualFold(rest, "clear") {
		*form = types.SymptomForm{Description: form.Description}
		return nil
	}
	var unknown []string
	for rest != "" {
		var tok string
		tok, rest, _ = strings.Cut(rest, " ")
		rest = strings.TrimSpace(rest)
		if tok == "" {
			continue
		}
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			unknown = append(unknown, tok)
			continue
		}
		switch strings.ToLower(key) {
		case "name":
			form.Name = val
		case "age":
			form.Age = types.ParseAge(val)
		case "gender":
			form.Gender = types.ParseGender(val)
		case "weight":
			form.Weight = types.ParseMeasure(val)
		case "height":
			form.Height = types.ParseMeasure(val)
		case "notes":
			form.Notes = strings.TrimSpace(val + " " + rest)
			rest = ""
		default:
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown field(s) %s; use %s", strings.Join(unknown, ", "), strings.Join(profileKeys, ", "))
	}
	return nil
}

func formatProfile(form types.SymptomForm) string {
	var b strings.Builder
	b.WriteString("👤 Profile\n")
	line := func(k, v string) {
		if v == "" {
			v = "not set"
		}
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}
	line("name", form.Name)
	line("age", optional(form.Age, func(v int) string { return fmt.Sprint(v) }))
	line("gender", optional(form.Gender, func(v types.Gender) string { return string(v) }))
	line("weight", optional(form.Weight, func(v float64) string { return fmt.Sprint(v) }))
	line("height", optional(form.Height, func(v float64) string { return fmt.Sprint(v) }))
	line("notes", form.Notes)
	b.WriteString("\nEdit with /profile age=34 gender=female weight=60 height=170 notes=…")
	return b.String()
}

func optional[T any](p *T, f func(T) string) string {
	if p == nil {
		return ""
	}
	return f(*p)
}

func (r *Router) handleProfile(chatID int64, args string) {
	s := r.session(chatID)
	s.mu.Lock()
	var err error
	if args != "" {
		err = applyProfile(&s.text.Form, args)
	}
	form := s.text.Form
	s.mu.Unlock()

	if err != nil {
		r.send(chatID, formatError(err.Error()))
		return
	}
	r.send(chatID, formatProfile(form))
}
