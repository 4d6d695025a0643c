package composition

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	model "contrapunto/internal/model/composition"
)

func TestImportScript(t *testing.T) {
	Convey("ImportScript", t, func() {
		ctx := context.Background()

		Convey("a one-line script yields one fresh idle unit", func() {
			s, backend := newTestService(t, Options{})
			id := seedComposition(t, s)

			comp, err := s.ImportScript(ctx, testOwner, id, "elections")
			So(err, ShouldBeNil)
			So(backend.count("generate-news-script"), ShouldEqual, 1)

			So(comp.Title, ShouldEqual, "Elecciones")
			So(comp.Summary, ShouldEqual, "Resumen")
			So(len(comp.Units), ShouldEqual, 1)

			unit := comp.Units[0]
			So(unit.Index, ShouldEqual, 1)
			So(unit.Character, ShouldEqual, model.CharacterNarrador)
			So(unit.Dialog, ShouldEqual, "Hola")
			So(unit.Mode, ShouldEqual, model.ModeTextToVideo)
			So(unit.Status, ShouldEqual, model.UnitStatusIdle)
			So(unit.Result, ShouldBeNil)
			So(unit.LastError, ShouldBeEmpty)
		})

		Convey("import replaces existing units and resets derived state", func() {
			s, _ := newTestService(t, Options{})
			id := seedComposition(t, s, readyUnit(1, "a1"), readyUnit(2, "a2"))

			_, err := s.MergeAll(ctx, testOwner, id)
			So(err, ShouldBeNil)

			comp, err := s.ImportScript(ctx, testOwner, id, "")
			So(err, ShouldBeNil)
			So(len(comp.Units), ShouldEqual, 1)
			So(comp.Units[0].Result, ShouldBeNil)
			So(comp.Merge.Status, ShouldEqual, model.MergeStatusIdle)
			So(comp.Merge.MergedURL, ShouldBeEmpty)
			So(comp.Publish.Status, ShouldEqual, model.PublishStatusIdle)
		})

		Convey("dialogs without an index are numbered by position", func() {
			s, backend := newTestService(t, Options{})
			backend.scriptBody = `{"title":"t","summary":"s","dialogs":[` +
				`{"character":"Narrador","dialog":"uno"},` +
				`{"character":"Progresista","dialog":"dos"}]}`
			id := seedComposition(t, s)

			comp, err := s.ImportScript(ctx, testOwner, id, "")
			So(err, ShouldBeNil)
			So(comp.Units[0].Index, ShouldEqual, 1)
			So(comp.Units[1].Index, ShouldEqual, 2)
			So(comp.NextIndex, ShouldEqual, 3)
		})

		Convey("a script without dialogs empties the composition", func() {
			s, backend := newTestService(t, Options{})
			backend.scriptBody = `{"title":"t","summary":"s","dialogs":[]}`
			id := seedComposition(t, s, textUnit(1))

			comp, err := s.ImportScript(ctx, testOwner, id, "")
			So(err, ShouldBeNil)
			So(len(comp.Units), ShouldEqual, 0)
		})

		Convey("an array-wrapped script response is handled", func() {
			s, backend := newTestService(t, Options{})
			backend.scriptBody = `[{"title":"Envuelto","summary":"s","dialogs":[{"index":1,"character":"Narrador","dialog":"Hola"}]}]`
			id := seedComposition(t, s)

			comp, err := s.ImportScript(ctx, testOwner, id, "q")
			So(err, ShouldBeNil)
			So(comp.Title, ShouldEqual, "Envuelto")
		})

		Convey("a failing script backend leaves the composition untouched", func() {
			s, backend := newTestService(t, Options{})
			backend.scriptBody = `[]`
			id := seedComposition(t, s, textUnit(1))

			_, err := s.ImportScript(ctx, testOwner, id, "q")
			So(err, ShouldNotBeNil)

			comp, _ := s.store.Get(id)
			So(len(comp.Units), ShouldEqual, 1)
			So(comp.Units[0].Dialog, ShouldEqual, "Hola")
		})
	})
}
