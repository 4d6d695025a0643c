package composition

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	model "contrapunto/internal/model/composition"
)

func readyUnit(index int, artifactID string) model.DialogUnit {
	u := textUnit(index)
	u.Status = model.UnitStatusReady
	u.Result = &model.ArtifactRef{
		ID:  artifactID,
		URL: "https://cdn.example.com/" + artifactID + ".mp4",
	}
	return u
}

func TestMergeAll(t *testing.T) {
	Convey("MergeAll", t, func() {
		ctx := context.Background()

		Convey("two fresh text units: two generation calls, one merge call", func() {
			s, backend := newTestService(t, Options{})
			id := seedComposition(t, s, textUnit(1), textUnit(2))

			result, err := s.MergeAll(ctx, testOwner, id)
			So(err, ShouldBeNil)
			So(result.Status, ShouldEqual, model.MergeStatusReady)
			So(result.MergedURL, ShouldEqual, "https://cdn.example.com/final.mp4")
			So(backend.count("generate-video-hedra"), ShouldEqual, 2)
			So(backend.count("merge-video"), ShouldEqual, 1)

			Convey("the submitted segments are in index order", func() {
				So(len(result.Segments), ShouldEqual, 2)
				So(result.Segments[0].Index, ShouldEqual, 1)
				So(result.Segments[1].Index, ShouldEqual, 2)
			})

			Convey("both units end ready", func() {
				comp, _ := s.store.Get(id)
				for i := range comp.Units {
					So(comp.Units[i].Status, ShouldEqual, model.UnitStatusReady)
					So(comp.Units[i].Result, ShouldNotBeNil)
				}
			})
		})

		Convey("a single unit is not mergeable and causes no traffic", func() {
			s, backend := newTestService(t, Options{})
			id := seedComposition(t, s, textUnit(1))

			_, err := s.MergeAll(ctx, testOwner, id)
			So(err, ShouldEqual, ErrNotEnoughUnits)
			So(backend.generateCalls(), ShouldEqual, 0)
			So(backend.count("merge-video"), ShouldEqual, 0)

			comp, _ := s.store.Get(id)
			So(comp.Merge.Status, ShouldNotEqual, model.MergeStatusFailed)
		})

		Convey("units with results are reused, not regenerated", func() {
			s, backend := newTestService(t, Options{})
			id := seedComposition(t, s, readyUnit(1, "a1"), readyUnit(2, "a2"))

			result, err := s.MergeAll(ctx, testOwner, id)
			So(err, ShouldBeNil)
			So(backend.generateCalls(), ShouldEqual, 0)
			So(backend.count("merge-video"), ShouldEqual, 1)
			So(result.Segments[0].ID, ShouldEqual, "a1")
			So(result.Segments[1].ID, ShouldEqual, "a2")
		})

		Convey("only the units without a result are generated", func() {
			s, backend := newTestService(t, Options{})
			id := seedComposition(t, s, readyUnit(1, "a1"), textUnit(2), readyUnit(3, "a3"))

			result, err := s.MergeAll(ctx, testOwner, id)
			So(err, ShouldBeNil)
			So(backend.count("generate-video-hedra"), ShouldEqual, 1)
			So(len(result.Segments), ShouldEqual, 3)
			So(result.Segments[0].ID, ShouldEqual, "a1")
			So(result.Segments[1].ID, ShouldEqual, "gen-1")
			So(result.Segments[2].ID, ShouldEqual, "a3")
		})

		Convey("an invalid unit aborts before any mutation or traffic", func() {
			s, backend := newTestService(t, Options{})
			invalid := textUnit(2)
			invalid.Dialog = ""
			id := seedComposition(t, s, textUnit(1), invalid)

			_, err := s.MergeAll(ctx, testOwner, id)
			var mErr *MergeError
			So(errors.As(err, &mErr), ShouldBeTrue)
			So(mErr.UnitIndex, ShouldEqual, 2)
			So(mErr.Err.Error(), ShouldEqual, model.MsgDialogRequired)
			So(backend.generateCalls(), ShouldEqual, 0)
			So(backend.count("merge-video"), ShouldEqual, 0)

			comp, _ := s.store.Get(id)
			So(comp.Merge.Status, ShouldEqual, model.MergeStatusIdle)
			So(comp.Units[0].Status, ShouldEqual, model.UnitStatusIdle)
		})

		Convey("the first failing generation aborts the attempt", func() {
			s, backend := newTestService(t, Options{})
			backend.generateFail = true
			id := seedComposition(t, s, textUnit(1), textUnit(2), textUnit(3))

			_, err := s.MergeAll(ctx, testOwner, id)
			var mErr *MergeError
			So(errors.As(err, &mErr), ShouldBeTrue)
			So(mErr.UnitIndex, ShouldEqual, 1)

			Convey("the merge backend is never contacted", func() {
				So(backend.count("merge-video"), ShouldEqual, 0)
			})

			Convey("only the first unit was attempted", func() {
				So(backend.generateCalls(), ShouldEqual, 1)
				comp, _ := s.store.Get(id)
				So(comp.Units[0].Status, ShouldEqual, model.UnitStatusFailed)
				So(comp.Units[1].Status, ShouldEqual, model.UnitStatusIdle)
				So(comp.Units[2].Status, ShouldEqual, model.UnitStatusIdle)
			})

			Convey("the merge is marked failed with the unit's message", func() {
				comp, _ := s.store.Get(id)
				So(comp.Merge.Status, ShouldEqual, model.MergeStatusFailed)
				So(comp.Merge.LastError, ShouldEqual, "Error al generar el video")
			})
		})

		Convey("a failing merge backend fails the attempt with the stable message", func() {
			s, backend := newTestService(t, Options{})
			backend.mergeFail = true
			id := seedComposition(t, s, readyUnit(1, "a1"), readyUnit(2, "a2"))

			result, err := s.MergeAll(ctx, testOwner, id)
			So(err, ShouldNotBeNil)
			So(result.Status, ShouldEqual, model.MergeStatusFailed)
			So(result.LastError, ShouldEqual, "Error al generar el video combinado")
			So(result.MergedURL, ShouldBeEmpty)
		})

		Convey("a merge reply with an unusable reference is rejected", func() {
			s, backend := newTestService(t, Options{})
			backend.mergeBody = `{"video_url":"ftp://x"}`
			id := seedComposition(t, s, readyUnit(1, "a1"), readyUnit(2, "a2"))

			result, err := s.MergeAll(ctx, testOwner, id)
			So(err, ShouldNotBeNil)
			So(result.Status, ShouldEqual, model.MergeStatusFailed)
			So(result.MergedURL, ShouldBeEmpty)
		})

		Convey("a new merge attempt clears the previous composite first", func() {
			s, backend := newTestService(t, Options{})
			id := seedComposition(t, s, readyUnit(1, "a1"), readyUnit(2, "a2"))

			_, err := s.MergeAll(ctx, testOwner, id)
			So(err, ShouldBeNil)

			backend.mergeFail = true
			result, err := s.MergeAll(ctx, testOwner, id)
			So(err, ShouldNotBeNil)
			So(result.MergedURL, ShouldBeEmpty)
			So(result.Status, ShouldEqual, model.MergeStatusFailed)
		})
	})
}
