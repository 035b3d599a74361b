package marks_test

import (
	"math/rand"
	"testing"

	"github.com/examworld/awr/internal/domain/marks"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator_Generate(t *testing.T) {
	Convey("Given a generator over the default subjects", t, func() {
		gen := marks.NewGenerator()
		subjects := gen.Subjects()

		Convey("When generating a mark sheet", func() {
			sheet := gen.Generate()

			Convey("Then it should cover exactly the configured subjects", func() {
				So(len(sheet.Marks), ShouldEqual, len(subjects))
				for _, subject := range subjects {
					_, ok := sheet.Marks[subject]
					So(ok, ShouldBeTrue)
				}
			})

			Convey("And every mark should be inside the documented ranges", func() {
				for _, m := range sheet.Marks {
					So(m.Theory, ShouldBeBetweenOrEqual, 10, 80)
					So(m.Practical, ShouldBeBetweenOrEqual, 5, 20)
				}
			})

			Convey("And the total should lie in [subjects*15, subjects*100]", func() {
				So(sheet.TotalMarks, ShouldBeBetweenOrEqual, len(subjects)*15, len(subjects)*100)
			})

			Convey("And the percentage should match the rounding formula", func() {
				want := marks.Round2(float64(sheet.TotalMarks) / float64(gen.MaxTotal()) * 100)
				So(sheet.Percentage, ShouldEqual, want)
			})
		})

		Convey("When generating many sheets", func() {
			Convey("Then totals should always stay inside the bounds", func() {
				for i := 0; i < 500; i++ {
					sheet := gen.Generate()
					So(sheet.TotalMarks, ShouldBeBetweenOrEqual, len(subjects)*15, len(subjects)*100)
				}
			})
		})
	})

	Convey("Given a generator with an injected random source", t, func() {
		genA := marks.NewGenerator(marks.WithRand(rand.New(rand.NewSource(7))))
		genB := marks.NewGenerator(marks.WithRand(rand.New(rand.NewSource(7))))

		Convey("Then identical seeds should produce identical sheets", func() {
			a := genA.Generate()
			b := genB.Generate()
			So(a.TotalMarks, ShouldEqual, b.TotalMarks)
			So(a.Percentage, ShouldEqual, b.Percentage)
			So(a.Marks, ShouldResemble, b.Marks)
		})
	})

	Convey("Given a generator with a custom subject list", t, func() {
		gen := marks.NewGenerator(marks.WithSubjects([]string{"history", "geography"}))

		Convey("Then the sheet and max total should follow the custom list", func() {
			sheet := gen.Generate()
			So(len(sheet.Marks), ShouldEqual, 2)
			So(gen.MaxTotal(), ShouldEqual, 200)
			_, ok := sheet.Marks["history"]
			So(ok, ShouldBeTrue)
		})
	})
}

func TestRound2(t *testing.T) {
	Convey("Given the two-decimal rounding helper", t, func() {
		So(marks.Round2(66.666666), ShouldEqual, 66.67)
		So(marks.Round2(50.0), ShouldEqual, 50.0)
		So(marks.Round2(33.333333), ShouldEqual, 33.33)
		So(marks.Round2(0.005), ShouldEqual, 0.01)
	})
}
