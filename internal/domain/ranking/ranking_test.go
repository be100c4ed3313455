package ranking_test

import (
	"testing"
	"time"

	"github.com/okian/poprzeczka/internal/domain/fold"
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)

// log builds a backing log from "participant day status" triples, one minute apart.
func log(entries ...[3]string) model.Table {
	table := model.Table{Headers: fold.Headers}
	for i, e := range entries {
		table.Rows = append(table.Rows, []string{
			"", fold.FormatTimestamp(t0.Add(time.Duration(i) * time.Minute)), e[0], e[1], e[2], "",
		})
	}
	return table
}

func mustFold(table model.Table, roster []string) model.DayStatusMap {
	res, err := fold.Process(table, roster)
	So(err, ShouldBeNil)
	return res.Days
}

func rowOf(r model.Ranking, participant string) model.Row {
	for _, row := range r.Rows {
		if row.Participant == participant {
			return row
		}
	}
	return model.Row{}
}

func TestCalculate_ThreeStrikes(t *testing.T) {
	roster := []string{"A", "B"}
	scenario := log(
		[3]string{"A", "1", "pass"}, [3]string{"B", "1", "pass"},
		[3]string{"A", "2", "fail"}, [3]string{"B", "2", "pass"},
		[3]string{"A", "3", "fail"}, [3]string{"B", "3", "pass"},
		[3]string{"A", "4", "fail"}, [3]string{"B", "4", "pass"},
	)

	Convey("Given A fails days 2-4 while B passes every day", t, func() {
		days := mustFold(scenario, roster)

		Convey("When ranking live at day 4", func() {
			r := ranking.Calculate(days, 4, model.ModeLive, roster)

			Convey("Then B should lead with 4 and A follow with 1", func() {
				So(len(r.Rows), ShouldEqual, 2)
				So(r.Rows[0].Participant, ShouldEqual, "B")
				So(r.Rows[0].Rank, ShouldEqual, 1)
				So(r.Rows[0].Score, ShouldEqual, 4)
				So(r.Rows[1].Participant, ShouldEqual, "A")
				So(r.Rows[1].Rank, ShouldEqual, 2)
				So(r.Rows[1].Score, ShouldEqual, 1)
			})

			Convey("And A should be eliminated on day 4, B never", func() {
				So(r.Eliminations["A"].Eliminated, ShouldBeTrue)
				So(r.Eliminations["A"].EliminatedOn, ShouldEqual, 4)
				So(r.Eliminations["A"].State, ShouldEqual, model.StateEliminated)
				So(r.Eliminations["B"].Eliminated, ShouldBeFalse)
				So(rowOf(r, "A").Eliminated, ShouldBeTrue)
			})
		})

		Convey("When ranking at day 3", func() {
			r := ranking.Calculate(days, 3, model.ModeOfficial, roster)

			Convey("Then A should be at risk but still in", func() {
				So(r.Eliminations["A"].State, ShouldEqual, model.StateAtRisk)
				So(r.Eliminations["A"].Eliminated, ShouldBeFalse)
				So(r.Eliminations["A"].Streak, ShouldEqual, 2)
			})
		})

		Convey("When a later correction flips A's day 2 to pass", func() {
			corrected := scenario
			corrected.Rows = append(corrected.Rows[:len(corrected.Rows):len(corrected.Rows)], []string{
				"", fold.FormatTimestamp(t0.Add(time.Hour)), "A", "2", "pass", "korekta",
			})
			fixed := mustFold(corrected, roster)
			r := ranking.Calculate(fixed, 4, model.ModeLive, roster)

			Convey("Then A's elimination should be lifted", func() {
				e, _ := fixed.Entry("A", 2)
				So(e.Status, ShouldEqual, model.StatusPass)
				So(r.Eliminations["A"].Eliminated, ShouldBeFalse)
				So(r.Eliminations["A"].State, ShouldEqual, model.StateAtRisk)
				So(rowOf(r, "A").Score, ShouldEqual, 2)
			})
		})
	})
}

func TestCalculate_Modes(t *testing.T) {
	roster := []string{"A"}

	Convey("Given A failed days 2 and 3 and has not reported day 4", t, func() {
		days := mustFold(log(
			[3]string{"A", "1", "pass"},
			[3]string{"A", "2", "fail"},
			[3]string{"A", "3", "no_report"},
		), roster)

		Convey("Then live mode should treat day 4 as pending", func() {
			r := ranking.Calculate(days, 4, model.ModeLive, roster)
			So(r.Eliminations["A"].Eliminated, ShouldBeFalse)
			So(r.Eliminations["A"].State, ShouldEqual, model.StateAtRisk)
			So(r.Rows[0].Reported, ShouldBeFalse)
		})

		Convey("Then official mode should count the missing day as a strike", func() {
			r := ranking.Calculate(days, 4, model.ModeOfficial, roster)
			So(r.Eliminations["A"].Eliminated, ShouldBeTrue)
			So(r.Eliminations["A"].EliminatedOn, ShouldEqual, 4)
		})
	})

	Convey("Given a gap in the middle of the log", t, func() {
		days := mustFold(log(
			[3]string{"A", "1", "pass"},
			[3]string{"A", "5", "pass"},
		), roster)

		Convey("Then live mode should still eliminate on the missing past days", func() {
			r := ranking.Calculate(days, 5, model.ModeLive, roster)
			So(r.Eliminations["A"].EliminatedOn, ShouldEqual, 4)
			So(r.Rows[0].Score, ShouldEqual, 1)
		})
	})
}

func TestCalculate_ScoreFreezesOnElimination(t *testing.T) {
	roster := []string{"A"}

	Convey("Given A passes again after being eliminated", t, func() {
		days := mustFold(log(
			[3]string{"A", "1", "pass"},
			[3]string{"A", "2", "fail"},
			[3]string{"A", "3", "fail"},
			[3]string{"A", "4", "fail"},
			[3]string{"A", "5", "pass"},
			[3]string{"A", "6", "pass"},
		), roster)

		Convey("Then the score should stop at the elimination day", func() {
			r := ranking.Calculate(days, 6, model.ModeOfficial, roster)
			So(r.Rows[0].Score, ShouldEqual, 1)
			So(r.Rows[0].EliminatedOn, ShouldEqual, 4)
		})
	})
}

func TestCalculate_TieBreak(t *testing.T) {
	roster := []string{"E", "D", "C"}

	Convey("Given C and D reach score 1 on day 1 and E on day 2", t, func() {
		days := mustFold(log(
			[3]string{"C", "1", "pass"}, [3]string{"D", "1", "pass"}, [3]string{"E", "1", "fail"},
			[3]string{"C", "2", "fail"}, [3]string{"D", "2", "fail"}, [3]string{"E", "2", "pass"},
		), roster)

		Convey("When ranking at day 2", func() {
			r := ranking.Calculate(days, 2, model.ModeOfficial, roster)

			Convey("Then C and D should share rank 1 in name order and E take rank 3", func() {
				So(r.Rows[0].Participant, ShouldEqual, "C")
				So(r.Rows[1].Participant, ShouldEqual, "D")
				So(r.Rows[2].Participant, ShouldEqual, "E")
				So(r.Rows[0].Rank, ShouldEqual, 1)
				So(r.Rows[1].Rank, ShouldEqual, 1)
				So(r.Rows[2].Rank, ShouldEqual, 3)
				So(r.Rows[2].ReachedOn, ShouldEqual, 2)
			})

			Convey("And the order should not depend on roster order", func() {
				again := ranking.Calculate(days, 2, model.ModeOfficial, []string{"C", "E", "D"})
				So(again.Rows, ShouldResemble, r.Rows)
			})
		})
	})
}

func TestCalculate_Empty(t *testing.T) {
	Convey("Given no roster or no data", t, func() {
		days := model.DayStatusMap{}
		days.Set("A", 1, model.DayEntry{Status: model.StatusPass})

		Convey("Then the result should be empty, not an error", func() {
			r := ranking.Calculate(days, 1, model.ModeLive, nil)
			So(r.Rows, ShouldBeEmpty)
			So(r.Eliminations, ShouldBeEmpty)

			r = ranking.Calculate(model.DayStatusMap{}, 1, model.ModeLive, []string{"A"})
			So(r.Rows, ShouldBeEmpty)
		})
	})
}

func TestScore_Monotonic(t *testing.T) {
	Convey("Given a mixed log", t, func() {
		days := model.DayStatusMap{}
		statuses := []model.Status{
			model.StatusPass, model.StatusFail, model.StatusPass, model.StatusNoReport,
			model.StatusPass, model.StatusPass, model.StatusFail, model.StatusPass,
		}
		for i, s := range statuses {
			days.Set("A", i+1, model.DayEntry{Status: s})
		}

		Convey("Then score should never decrease as the day grows", func() {
			prev := 0
			for d := 1; d <= len(statuses)+2; d++ {
				score, _ := ranking.Score(days, "A", d)
				So(score, ShouldBeGreaterThanOrEqualTo, prev)
				prev = score
			}
			So(prev, ShouldEqual, 5)
		})
	})
}

func TestSurvival(t *testing.T) {
	roster := []string{"A", "B"}

	Convey("Given A is eliminated on day 4", t, func() {
		days := mustFold(log(
			[3]string{"A", "1", "pass"}, [3]string{"B", "1", "pass"},
			[3]string{"A", "2", "fail"}, [3]string{"B", "2", "pass"},
			[3]string{"A", "3", "fail"}, [3]string{"B", "3", "pass"},
			[3]string{"A", "4", "fail"}, [3]string{"B", "4", "pass"},
		), roster)

		Convey("Then the survival curve should drop from 2 to 1 on day 4", func() {
			curve := ranking.Survival(days, 4, roster)
			So(curve, ShouldResemble, []model.SurvivalPoint{
				{Day: 1, Count: 2}, {Day: 2, Count: 2}, {Day: 3, Count: 2}, {Day: 4, Count: 1},
			})
		})
	})
}
