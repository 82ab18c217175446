package timeline_test

import (
	"testing"

	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDayKey(t *testing.T) {
	Convey("Given heterogeneous date representations", t, func() {
		Convey("Then plain calendar days pass through", func() {
			key, err := timeline.DayKey("2026-03-14")
			So(err, ShouldBeNil)
			So(key, ShouldEqual, "2026-03-14")
		})

		Convey("Then RFC3339 timestamps truncate to the UTC day", func() {
			key, err := timeline.DayKey("2026-03-14T23:30:00Z")
			So(err, ShouldBeNil)
			So(key, ShouldEqual, "2026-03-14")
		})

		Convey("Then offset timestamps truncate in UTC, not local time", func() {
			// 01:30+03:00 is 22:30 UTC the previous day.
			key, err := timeline.DayKey("2026-03-15T01:30:00+03:00")
			So(err, ShouldBeNil)
			So(key, ShouldEqual, "2026-03-14")
		})

		Convey("Then unparseable input fails fast", func() {
			_, err := timeline.DayKey("14/03/2026")
			So(err, ShouldNotBeNil)
			So(err, ShouldWrap, timeline.ErrInvalidDate)
		})
	})
}

func TestAligner_Align(t *testing.T) {
	Convey("Given an aligner with the default one-day tolerance", t, func() {
		aligner := timeline.NewAligner()

		Convey("When load and biometric dates overlap exactly", func() {
			loads := []model.DailyLoad{
				{Date: "2026-03-02", CompositeLoad: 420},
				{Date: "2026-03-01", CompositeLoad: 380},
			}
			bios := []model.BiometricRecord{
				{Date: "2026-03-01", HRVNight: 62},
				{Date: "2026-03-02", HRVNight: 58},
			}

			days, err := aligner.Align(loads, bios)

			Convey("Then days cover the union, sorted ascending", func() {
				So(err, ShouldBeNil)
				So(len(days), ShouldEqual, 2)
				So(days[0].Key, ShouldEqual, "2026-03-01")
				So(days[1].Key, ShouldEqual, "2026-03-02")
			})

			Convey("And each day carries its exact-date records", func() {
				So(err, ShouldBeNil)
				So(days[0].Load.CompositeLoad, ShouldEqual, 380)
				So(days[0].Biometric.HRVNight, ShouldEqual, 62)
				So(days[1].Load.CompositeLoad, ShouldEqual, 420)
				So(days[1].Biometric.HRVNight, ShouldEqual, 58)
			})
		})

		Convey("When a day has no biometric record of its own", func() {
			loads := []model.DailyLoad{
				{Date: "2026-03-01", CompositeLoad: 300},
				{Date: "2026-03-02", CompositeLoad: 500},
			}

			Convey("And a neighbor exists within one day", func() {
				bios := []model.BiometricRecord{{Date: "2026-03-01", HRVNight: 70}}
				days, err := aligner.Align(loads, bios)

				Convey("Then the neighbor is borrowed", func() {
					So(err, ShouldBeNil)
					So(days[1].HasBiometric, ShouldBeTrue)
					So(days[1].Biometric.HRVNight, ShouldEqual, 70)
				})
			})

			Convey("And the closest record is further than one day", func() {
				bios := []model.BiometricRecord{{Date: "2026-02-27", HRVNight: 70}}
				days, err := aligner.Align(loads, bios)

				Convey("Then the load days stay biometric-free", func() {
					So(err, ShouldBeNil)
					So(days[1].HasBiometric, ShouldBeFalse)
					So(days[1].Biometric, ShouldResemble, model.BiometricRecord{})
					So(days[1].HasLoad, ShouldBeTrue)
				})
			})

			Convey("And two neighbors are equally distant", func() {
				bios := []model.BiometricRecord{
					{Date: "2026-03-03", HRVNight: 50},
					{Date: "2026-03-01", HRVNight: 70},
				}
				loads := []model.DailyLoad{{Date: "2026-03-02", CompositeLoad: 500}}
				days, err := aligner.Align(loads, bios)

				Convey("Then the earliest-scanned record wins the tie", func() {
					So(err, ShouldBeNil)
					// 2026-03-02 has no exact biometric; both neighbors are
					// 1 day away and the first in input order is kept.
					var merged timeline.Day
					for _, d := range days {
						if d.Key == "2026-03-02" {
							merged = d
						}
					}
					So(merged.HasBiometric, ShouldBeTrue)
					So(merged.Biometric.HRVNight, ShouldEqual, 50)
				})
			})
		})

		Convey("When a record date cannot be parsed", func() {
			loads := []model.DailyLoad{{Date: "not-a-date", CompositeLoad: 1}}
			_, err := aligner.Align(loads, nil)

			Convey("Then alignment fails fast with the labeled error", func() {
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, timeline.ErrInvalidDate)
			})
		})

		Convey("When both inputs are empty", func() {
			days, err := aligner.Align(nil, nil)

			Convey("Then the timeline is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(days, ShouldBeEmpty)
			})
		})
	})
}
