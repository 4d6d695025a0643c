package composition

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestValidateForGeneration(t *testing.T) {
	valid := DialogUnit{
		Index:      1,
		Character:  CharacterNarrador,
		Background: BackgroundNewscast,
		Mode:       ModeTextToVideo,
		Dialog:     "Hola",
	}

	tests := []struct {
		name              string
		mutate            func(u *DialogUnit)
		requireBackground bool
		wantMsg           string
	}{
		{
			name:   "complete text unit passes",
			mutate: func(u *DialogUnit) {},
		},
		{
			name: "complete clip unit passes",
			mutate: func(u *DialogUnit) {
				u.Mode = ModeVideoToVideo
				u.Dialog = ""
				u.Clip = &ClipRef{Key: "clips/c/1.mp4"}
			},
		},
		{
			name:              "missing background fails first when required",
			mutate:            func(u *DialogUnit) { u.Background = ""; u.Character = "" },
			requireBackground: true,
			wantMsg:           MsgBackgroundRequired,
		},
		{
			name:    "missing background passes when optional",
			mutate:  func(u *DialogUnit) { u.Background = "" },
			wantMsg: "",
		},
		{
			name:    "missing character",
			mutate:  func(u *DialogUnit) { u.Character = "" },
			wantMsg: MsgCharacterRequired,
		},
		{
			name: "character checked before mode-specific fields",
			mutate: func(u *DialogUnit) {
				u.Character = ""
				u.Dialog = ""
			},
			wantMsg: MsgCharacterRequired,
		},
		{
			name:    "text mode without dialog",
			mutate:  func(u *DialogUnit) { u.Dialog = "" },
			wantMsg: MsgDialogRequired,
		},
		{
			name: "clip mode without clip",
			mutate: func(u *DialogUnit) {
				u.Mode = ModeVideoToVideo
			},
			wantMsg: MsgClipRequired,
		},
		{
			name:    "missing mode",
			mutate:  func(u *DialogUnit) { u.Mode = "" },
			wantMsg: MsgModeRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid.Clone()
			tt.mutate(&u)
			err := u.ValidateForGeneration(tt.requireBackground)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %q, got nil", tt.wantMsg)
			}
			if err.Error() != tt.wantMsg {
				t.Fatalf("expected %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestDialogUnitClone(t *testing.T) {
	Convey("Clone copies pointer fields", t, func() {
		u := DialogUnit{
			Index:  1,
			Clip:   &ClipRef{Key: "clips/c/1.mp4"},
			Result: &ArtifactRef{ID: "a1", URL: "https://cdn.example.com/1.mp4"},
		}
		clone := u.Clone()
		clone.Clip.Key = "changed"
		clone.Result.ID = "changed"

		So(u.Clip.Key, ShouldEqual, "clips/c/1.mp4")
		So(u.Result.ID, ShouldEqual, "a1")
	})
}

func TestIsReady(t *testing.T) {
	Convey("IsReady requires a ready status, a result and no error", t, func() {
		u := DialogUnit{
			Status: UnitStatusReady,
			Result: &ArtifactRef{ID: "a1", URL: "https://cdn.example.com/1.mp4"},
		}
		So(u.IsReady(), ShouldBeTrue)

		failed := u
		failed.Status = UnitStatusFailed
		So(failed.IsReady(), ShouldBeFalse)

		noResult := u
		noResult.Result = nil
		So(noResult.IsReady(), ShouldBeFalse)

		withError := u.Clone()
		withError.LastError = "boom"
		So(withError.IsReady(), ShouldBeFalse)
	})
}
