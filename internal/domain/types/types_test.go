package types_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/okian/playlab/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given a leaderboard entry", t, func() {
		entry := types.Entry{Rank: 1, PlaylistID: "pl-1", HealthScore: 88, HealthStatus: "Great", OverallRating: 4.4}

		Convey("When it is encoded", func() {
			b, err := json.Marshal(entry)

			Convey("Then it uses snake_case keys and omits an empty personality", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"rank":1,"playlist_id":"pl-1","health_score":88,"health_status":"Great","overall_rating":4.4}`)
			})
		})
	})
}

func TestJobStatus(t *testing.T) {
	Convey("Given the job states", t, func() {
		So(types.JobQueued.Terminal(), ShouldBeFalse)
		So(types.JobRunning.Terminal(), ShouldBeFalse)
		So(types.JobDone.Terminal(), ShouldBeTrue)
		So(types.JobFailed.Terminal(), ShouldBeTrue)
	})
}
