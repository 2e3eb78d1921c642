package model

import (
	"reflect"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"learner", Learner, false},
		{"instructor", Instructor, false},
		{"admin", Admin, false},
		{"Admin", Admin, false},
		{"  INSTRUCTOR  ", Instructor, false},
		{"", "", true},
		{"teacher", "", true},
		{"root", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseRole(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestParseLessonType(t *testing.T) {
	for _, valid := range []string{"video", "document", "image", "quiz", "Video", " QUIZ "} {
		if _, err := ParseLessonType(valid); err != nil {
			t.Errorf("ParseLessonType(%q): %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "audio", "text"} {
		if _, err := ParseLessonType(invalid); err == nil {
			t.Errorf("ParseLessonType(%q) should fail", invalid)
		}
	}
}

func TestQuizRewardFor(t *testing.T) {
	quiz := &Quiz{
		RewardFirstTry:   100,
		RewardSecondTry:  50,
		RewardThirdTry:   25,
		RewardFourthPlus: 10,
	}

	tests := []struct {
		attempt int
		want    int
	}{
		{1, 100},
		{2, 50},
		{3, 25},
		{4, 10},
		{5, 10},
		{100, 10},
	}
	for _, tt := range tests {
		if got := quiz.RewardFor(tt.attempt); got != tt.want {
			t.Errorf("RewardFor(%d) = %d, want %d", tt.attempt, got, tt.want)
		}
	}
}

func TestCourseTagList(t *testing.T) {
	var course Course

	if got := course.TagList(); got != nil {
		t.Errorf("empty tags = %v, want nil", got)
	}

	course.SetTagList([]string{"go", "web"})
	if got := course.TagList(); !reflect.DeepEqual(got, []string{"go", "web"}) {
		t.Errorf("tags = %v", got)
	}

	course.SetTagList(nil)
	if got := course.TagList(); len(got) != 0 {
		t.Errorf("cleared tags = %v, want empty", got)
	}
}
