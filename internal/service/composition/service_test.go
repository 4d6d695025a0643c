package composition

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	model "contrapunto/internal/model/composition"
	"contrapunto/internal/pkg/storage/local"
	"contrapunto/internal/pkg/workflow"
)

// fakeBackend drives all four webhook endpoints and counts every call.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	scriptBody   string
	generateBody string
	generateFail bool
	mergeBody    string
	mergeFail    bool
	publishBody  string
	publishFail  bool

	lastMergePayload string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:        make(map[string]int),
		scriptBody:   `{"title":"Elecciones","summary":"Resumen","dialogs":[{"index":1,"character":"Narrador","dialog":"Hola"}]}`,
		generateBody: `{"id":"gen-1","url":"https://cdn.example.com/unit.mp4"}`,
		mergeBody:    `{"video_url":"https://cdn.example.com/final.mp4"}`,
		publishBody:  `{"video_url":"https://social.example.com/p/1"}`,
	}
}

func (f *fakeBackend) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeBackend) generateCalls() int {
	return f.count("generate-video-hedra") + f.count("generate-video-runway")
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/webhook/")
	f.mu.Lock()
	f.calls[path]++
	f.mu.Unlock()

	switch path {
	case "generate-news-script":
		w.Write([]byte(f.scriptBody))
	case "generate-video-hedra", "generate-video-runway":
		if f.generateFail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(f.generateBody))
	case "merge-video":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.lastMergePayload = string(body)
		f.mu.Unlock()
		if f.mergeFail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(f.mergeBody))
	case "post-video":
		if f.publishFail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(f.publishBody))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestService(t *testing.T, opts Options) (*Service, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	flow, err := workflow.NewClient(&workflow.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewService(flow, opts), backend
}

const testOwner = "owner-1"

func seedComposition(t *testing.T, s *Service, units ...model.DialogUnit) string {
	t.Helper()
	comp, err := s.CreateComposition(context.Background(), testOwner, "Titular", "Resumen")
	if err != nil {
		t.Fatalf("CreateComposition: %v", err)
	}
	next := comp.NextIndex
	for i := range units {
		if units[i].Index >= next {
			next = units[i].Index + 1
		}
	}
	loaded, err := s.store.Get(comp.ID)
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	loaded.Units = units
	loaded.NextIndex = next
	s.store.Put(loaded)
	return comp.ID
}

func TestGenerateUnit(t *testing.T) {
	Convey("GenerateUnit", t, func() {
		Convey("a valid text unit reaches ready with its artifact", func() {
			s, backend := newTestService(t, Options{})
			id := seedComposition(t, s, textUnit(1))

			unit, err := s.GenerateUnit(context.Background(), testOwner, id, 1)
			So(err, ShouldBeNil)
			So(unit.Status, ShouldEqual, model.UnitStatusReady)
			So(unit.Result, ShouldNotBeNil)
			So(unit.Result.ID, ShouldEqual, "gen-1")
			So(unit.Result.URL, ShouldEqual, "https://cdn.example.com/unit.mp4")
			So(backend.count("generate-video-hedra"), ShouldEqual, 1)
		})

		Convey("a validation failure causes no backend traffic", func() {
			s, backend := newTestService(t, Options{})
			u := textUnit(1)
			u.Character = ""
			id := seedComposition(t, s, u)

			_, err := s.GenerateUnit(context.Background(), testOwner, id, 1)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, model.MsgCharacterRequired)
			So(backend.generateCalls(), ShouldEqual, 0)

			comp, _ := s.store.Get(id)
			So(comp.Units[0].Status, ShouldEqual, model.UnitStatusIdle)
		})

		Convey("a backend failure marks the unit failed with the stable message", func() {
			s, backend := newTestService(t, Options{})
			backend.generateFail = true
			id := seedComposition(t, s, textUnit(1))

			unit, err := s.GenerateUnit(context.Background(), testOwner, id, 1)
			So(err, ShouldNotBeNil)
			So(unit.Status, ShouldEqual, model.UnitStatusFailed)
			So(unit.LastError, ShouldEqual, "Error al generar el video")
		})

		Convey("a unit already processing gets no second call", func() {
			s, backend := newTestService(t, Options{})
			id := seedComposition(t, s, textUnit(1))

			_, err := s.store.BeginGeneration(id, 1, false)
			So(err, ShouldBeNil)

			_, err = s.GenerateUnit(context.Background(), testOwner, id, 1)
			So(err, ShouldEqual, ErrGenerationInFlight)
			So(backend.generateCalls(), ShouldEqual, 0)
		})

		Convey("a foreign owner cannot reach the composition", func() {
			s, backend := newTestService(t, Options{})
			id := seedComposition(t, s, textUnit(1))

			_, err := s.GenerateUnit(context.Background(), "intruder", id, 1)
			So(err, ShouldEqual, ErrCompositionNotFound)
			So(backend.generateCalls(), ShouldEqual, 0)
		})
	})
}

func TestGenerateUnitFromClip(t *testing.T) {
	Convey("a clip unit round-trips through storage and the clip backend", t, func() {
		clips, err := local.NewLocalStorage(t.TempDir(), "http://localhost:8080/clips", 3600)
		So(err, ShouldBeNil)

		s, backend := newTestService(t, Options{ClipStorage: clips})
		id := seedComposition(t, s, model.DialogUnit{
			Index:      1,
			Character:  model.CharacterProgresista,
			Background: model.BackgroundStreet,
			Mode:       model.ModeVideoToVideo,
			Status:     model.UnitStatusIdle,
		})

		_, err = s.AttachClip(context.Background(), testOwner, id, 1,
			"source.mp4", "video/mp4", 14, strings.NewReader("fake mp4 bytes"))
		So(err, ShouldBeNil)

		unit, err := s.GenerateUnit(context.Background(), testOwner, id, 1)
		So(err, ShouldBeNil)
		So(unit.Status, ShouldEqual, model.UnitStatusReady)
		So(backend.count("generate-video-runway"), ShouldEqual, 1)
	})
}

func TestAttachClip(t *testing.T) {
	Convey("AttachClip gates on the declared media type and size", t, func() {
		clips, err := local.NewLocalStorage(t.TempDir(), "http://localhost:8080/clips", 3600)
		So(err, ShouldBeNil)
		s, _ := newTestService(t, Options{ClipStorage: clips, MaxClipSize: 64})
		id := seedComposition(t, s, textUnit(1))

		Convey("a valid MP4 is stored and referenced", func() {
			unit, err := s.AttachClip(context.Background(), testOwner, id, 1,
				"source.mp4", "video/mp4", 14, strings.NewReader("fake mp4 bytes"))
			So(err, ShouldBeNil)
			So(unit.Clip, ShouldNotBeNil)
			So(unit.Clip.Filename, ShouldEqual, "source.mp4")
			So(unit.Clip.Key, ShouldStartWith, "clips/"+id+"/1-")

			exists, err := clips.Exists(context.Background(), unit.Clip.Key)
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})

		Convey("a content type with parameters still counts as MP4", func() {
			_, err := s.AttachClip(context.Background(), testOwner, id, 1,
				"source.mp4", "video/mp4; codecs=avc1", 14, strings.NewReader("fake mp4 bytes"))
			So(err, ShouldBeNil)
		})

		Convey("a non-MP4 upload is rejected with the operator message", func() {
			_, err := s.AttachClip(context.Background(), testOwner, id, 1,
				"notes.txt", "text/plain", 4, strings.NewReader("text"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, model.MsgInvalidClip)
		})

		Convey("an oversized upload is rejected", func() {
			_, err := s.AttachClip(context.Background(), testOwner, id, 1,
				"big.mp4", "video/mp4", 1<<20, strings.NewReader("pretend this is huge"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, model.MsgInvalidClip)
		})
	})
}

func TestCompositionLifecycle(t *testing.T) {
	Convey("composition CRUD", t, func() {
		s, _ := newTestService(t, Options{})
		ctx := context.Background()

		Convey("create, get, list, delete", func() {
			comp, err := s.CreateComposition(ctx, testOwner, "Titular", "Resumen")
			So(err, ShouldBeNil)
			So(comp.ID, ShouldNotBeEmpty)
			So(comp.NextIndex, ShouldEqual, 1)

			got, err := s.GetComposition(ctx, testOwner, comp.ID)
			So(err, ShouldBeNil)
			So(got.Title, ShouldEqual, "Titular")

			list, err := s.ListCompositions(ctx, testOwner)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 1)

			other, err := s.ListCompositions(ctx, "someone-else")
			So(err, ShouldBeNil)
			So(len(other), ShouldEqual, 0)

			So(s.DeleteComposition(ctx, testOwner, comp.ID), ShouldBeNil)
			_, err = s.GetComposition(ctx, testOwner, comp.ID)
			So(err, ShouldEqual, ErrCompositionNotFound)
		})

		Convey("unit edits flow through the service", func() {
			comp, _ := s.CreateComposition(ctx, testOwner, "", "")
			unit, err := s.AddUnit(ctx, testOwner, comp.ID)
			So(err, ShouldBeNil)
			So(unit.Index, ShouldEqual, 1)

			character := model.CharacterConservador
			mode := model.ModeTextToVideo
			dialog := "Buenas"
			updated, err := s.UpdateUnit(ctx, testOwner, comp.ID, 1, UnitPatch{
				Character: &character,
				Mode:      &mode,
				Dialog:    &dialog,
			})
			So(err, ShouldBeNil)
			So(updated.Character, ShouldEqual, model.CharacterConservador)
			So(updated.Dialog, ShouldEqual, "Buenas")

			So(s.RemoveUnit(ctx, testOwner, comp.ID, 1), ShouldBeNil)
			So(s.RemoveUnit(ctx, testOwner, comp.ID, 1), ShouldEqual, ErrUnitNotFound)
		})
	})
}
