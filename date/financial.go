package date

import (
	"time"
	_ "time/tzdata" // the rollover zone must resolve on hosts without a zoneinfo database
)

// RolloverHour is the local hour at which a new financial day starts.
const RolloverHour = 21

// Zone is the reference timezone of the game's financial calendar.
const Zone = "America/Caracas"

var financialLocation = mustLoad(Zone)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Location returns the reference location used for financial days.
func Location() *time.Location { return financialLocation }

// FinancialDay returns the financial day t belongs to.
//
// Financial days roll over at RolloverHour in Zone: before that hour, the
// financial day is still the previous calendar date.
func FinancialDay(t time.Time) Date {
	local := t.In(financialLocation)
	d := Of(local)
	if local.Hour() < RolloverHour {
		return d.Add(-1)
	}
	return d
}

// FinancialToday returns the current financial day.
func FinancialToday() Date { return FinancialDay(time.Now()) }

// FinancialStart returns the first instant of the financial day d.
func FinancialStart(d Date) time.Time {
	return time.Date(d.y, d.m, d.d, RolloverHour, 0, 0, 0, financialLocation)
}
