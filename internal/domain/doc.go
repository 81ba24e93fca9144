// Package domain models RDW parking-tariff open data and consolidates it into
// weekly price schedules.
//
// # Data Source
//
// Tariff data originates from the RDW open data portal (opendata.rdw.nl),
// published per area manager (municipality) as SODA JSON datasets. The
// collector joins area, regulation, time frame and fare part records and
// publishes one flattened [ZoneTariffs] message per parking zone. This package
// only sees that flattened shape.
//
// # RDW Data Conventions
//
// Day tokens:
//
//	Dutch weekday names in upper case: MAANDAG, DINSDAG, ..., ZONDAG.
//	DAGELIJKS ("daily") applies to all seven days. Other tokens such as
//	FEESTDAG (public holiday) exist upstream but are not part of the weekly
//	schedule and are dropped.
//
// Time format:
//
//	HHMM in 24-hour notation as a string, e.g. "0930" or "930" = 09:30.
//	"2400" marks the end of the day. Empty start means 00:00, empty end 24:00.
//	Times stay in HHMM integer form throughout; the ordering of HHMM integers
//	matches the ordering of the times they encode.
//
// Fare parts:
//
//	Each fare calculation code has an amount charged per step and a step size
//	in minutes. The hourly rate is amount / step * 60. Step sizes of 480
//	minutes and more are day passes ("dagkaart").
//
// # Consolidation
//
// For each weekday the candidates are reduced with a sweep line over all
// interval boundaries. Each elementary range is won by the candidate with
// the highest rate, ties broken by explicit priority and then by the longest
// description. Consecutive paid ranges are merged into one visible price
// band; free ranges are never merged with paid ones. See [ReduceDay] and
// [MergeSlots].
//
// # Labels
//
// Labels follow the Dutch app locale: "€ 2,50 / u" (per hour), "€ 0,63 / 15 min"
// (per step) and "€ 15,00 / dag" (day pass). Free time renders as
// "Free parking" with detail "Vrij parkeren".
package domain
