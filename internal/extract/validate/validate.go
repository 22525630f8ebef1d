// Package validate runs domain sanity checks over a merged tender record.
// Checks only report; merged values are never rewritten.
package validate

import (
	"fmt"
	"math"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

const (
	fieldHeadCount = "kisi_sayisi"
	fieldMeals     = "ogun_sayisi"
	fieldDays      = "gun_sayisi"
	fieldBudget    = "tahmini_butce"
	fieldCross     = "cross_check"

	// assumed when a total has to be split back into a head count
	defaultMealsPerDay = 3
	defaultDays        = 365
)

type facts struct {
	heads, meals, days, budget             float64
	hasHeads, hasMeals, hasDays, hasBudget bool
}

func (f facts) totalMeals() (float64, bool) {
	if !f.hasHeads || !f.hasMeals || !f.hasDays || f.heads <= 0 || f.meals <= 0 || f.days <= 0 {
		return 0, false
	}
	return f.heads * f.meals * f.days, true
}

// Check inspects head count, meals per day, day count and budget and
// returns the warnings found, in a stable order.
func Check(record extractionModel.MergedRecord) []extractionModel.Warning {
	var f facts
	f.heads, f.hasHeads = record.Number(fieldHeadCount)
	f.meals, f.hasMeals = record.Number(fieldMeals)
	f.days, f.hasDays = record.Number(fieldDays)
	f.budget, f.hasBudget = record.Number(fieldBudget)

	var out []extractionModel.Warning
	for _, check := range []func(facts) []extractionModel.Warning{headCount, mealsPerDay, days, crossCheck, budget} {
		out = append(out, check(f)...)
	}
	return out
}

func warn(field, severity string, value any, format string, args ...any) []extractionModel.Warning {
	return []extractionModel.Warning{{Field: field, Severity: severity, Message: fmt.Sprintf(format, args...), Value: value}}
}

func headCount(f facts) []extractionModel.Warning {
	switch {
	case !f.hasHeads:
		return warn(fieldHeadCount, SeverityWarning, nil, "head count not found")
	case f.heads > 0 && f.heads <= 30:
		return warn(fieldHeadCount, SeverityError, f.heads,
			"head count %v is very small and may be a clause number; check manually", f.heads)
	case f.heads > 1000:
		meals, days := f.meals, f.days
		if !f.hasMeals || meals <= 0 {
			meals = defaultMealsPerDay
		}
		if !f.hasDays || days <= 0 {
			days = defaultDays
		}
		perDay := math.Round(f.heads / days / meals)
		severity := SeverityWarning
		if f.heads > 10000 {
			severity = SeverityError
		}
		return warn(fieldHeadCount, severity, f.heads,
			"head count %v looks like a total meal count; %v / %v days / %v meals = %v people",
			f.heads, f.heads, days, meals, perDay)
	}
	return nil
}

func mealsPerDay(f facts) []extractionModel.Warning {
	switch {
	case !f.hasMeals:
		return warn(fieldMeals, SeverityInfo, nil, "meals per day not found")
	case f.meals < 1:
		return warn(fieldMeals, SeverityError, f.meals, "meals per day %v is not plausible", f.meals)
	case f.meals > 5:
		return warn(fieldMeals, SeverityWarning, f.meals, "meals per day %v is unusually high", f.meals)
	}
	return nil
}

func days(f facts) []extractionModel.Warning {
	switch {
	case !f.hasDays:
		return warn(fieldDays, SeverityInfo, nil, "contract length in days not found")
	case f.days > 500:
		return warn(fieldDays, SeverityWarning, f.days, "contract length %v days (about %.1f years) is long", f.days, f.days/365)
	case f.days > 0 && f.days < 30:
		return warn(fieldDays, SeverityWarning, f.days, "contract length %v days is shorter than a month", f.days)
	}
	return nil
}

func crossCheck(f facts) []extractionModel.Warning {
	total, ok := f.totalMeals()
	if !ok {
		return nil
	}
	switch {
	case total > 100_000_000:
		return warn(fieldCross, SeverityError, total,
			"total meals %.0f (%v x %v x %v) is not physically possible", total, f.heads, f.meals, f.days)
	case total > 50_000_000:
		return warn(fieldCross, SeverityWarning, total,
			"total meals %.0f (%v x %v x %v) is very high", total, f.heads, f.meals, f.days)
	case total < 1000:
		return warn(fieldCross, SeverityInfo, total,
			"total meals %.0f (%v x %v x %v) is a small tender", total, f.heads, f.meals, f.days)
	}
	return nil
}

func budget(f facts) []extractionModel.Warning {
	if !f.hasBudget || f.budget <= 0 {
		return warn(fieldBudget, SeverityInfo, nil, "estimated budget not found")
	}
	if f.budget < 50000 {
		return warn(fieldBudget, SeverityWarning, f.budget, "estimated budget %.0f is very low", f.budget)
	}
	total, ok := f.totalMeals()
	if !ok {
		return nil
	}
	perMeal := f.budget / total
	switch {
	case perMeal < 5:
		return warn(fieldBudget, SeverityError, f.budget, "cost per meal %.2f is implausibly low", perMeal)
	case perMeal < 10:
		return warn(fieldBudget, SeverityWarning, f.budget, "cost per meal %.2f is low", perMeal)
	case perMeal > 300:
		return warn(fieldBudget, SeverityWarning, f.budget, "cost per meal %.2f is unusually high", perMeal)
	case perMeal > 200:
		return warn(fieldBudget, SeverityInfo, f.budget, "cost per meal %.2f suggests a premium service", perMeal)
	}
	return nil
}
