package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		discount float64
		want     float64
	}{
		{"no discount", 100, 0, 100},
		{"quarter off", 100, 25, 75},
		{"full discount", 49.99, 100, 0},
		{"rounds to cents", 19.99, 33, 13.39},
		{"free course", 0, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Course{Price: tt.price, Discount: tt.discount}
			assert.InDelta(t, tt.want, c.EffectivePrice(), 0.001)
		})
	}
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 0, PercentOf(0, 0), "empty course yields zero")
	assert.Equal(t, 0, PercentOf(3, 0))
	assert.Equal(t, 33, PercentOf(1, 3))
	assert.Equal(t, 67, PercentOf(2, 3))
	assert.Equal(t, 100, PercentOf(3, 3))
	assert.Equal(t, 100, PercentOf(5, 3), "capped at 100")
}

func TestCourseLectureHelpers(t *testing.T) {
	c := Course{
		Chapters: []Chapter{
			{Lectures: []Lecture{{ID: "lec_1"}, {ID: "lec_2"}}},
			{Lectures: []Lecture{{ID: "lec_3"}}},
		},
	}
	assert.Equal(t, 3, c.TotalLectures())
	assert.True(t, c.HasLecture("lec_3"))
	assert.False(t, c.HasLecture("lec_4"))
}

func TestPublicUserNeverExposesPasswordHash(t *testing.T) {
	u := User{
		ID:           "usr_1",
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "$2a$12$secret",
		Role:         RoleStudent,
	}

	raw, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "ana@example.com", decoded["email"])
	assert.Equal(t, []any{}, decoded["enrolledCourses"], "nil cache serializes as empty list")
}

func TestProgressCompleted(t *testing.T) {
	p := Progress{CompletedLectures: []string{"lec_1", "lec_2"}}
	assert.True(t, p.Completed("lec_2"))
	assert.False(t, p.Completed("lec_3"))
}
