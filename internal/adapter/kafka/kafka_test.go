package kafka

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/county-home-values/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBuiltAt = "2021-11-15T08:00:00Z"

func TestSerializeGrowth(t *testing.T) {
	msg, err := serializeGrowth(domain.GrowthRecord{
		RegionID: 3101,
		County:   "Los Angeles County (CA)",
		State:    "CA",
		Window:   domain.WindowThreeYear,
		Percent:  6.5,
	}, testBuiltAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("3101/3yr"), msg.Key)
	assert.JSONEq(t, `{"region_id":3101,"county":"Los Angeles County (CA)","state":"CA","window":"3yr","annualized_growth_pct":6.5}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "table", msg.Headers[0].Key)
	assert.Equal(t, []byte(TableGrowth), msg.Headers[0].Value)
	assert.Equal(t, "built_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(testBuiltAt), msg.Headers[1].Value)
}

func TestSerializeGrowth_UndefinedIsNull(t *testing.T) {
	msg, err := serializeGrowth(domain.GrowthRecord{RegionID: 7, Window: domain.WindowYTD, Percent: math.NaN()}, testBuiltAt)
	require.NoError(t, err)

	var m GrowthMessage
	require.NoError(t, json.Unmarshal(msg.Value, &m))
	assert.Nil(t, m.Percent)
	assert.Contains(t, string(msg.Value), `"annualized_growth_pct":null`)
}

func TestSerializeRanking(t *testing.T) {
	msg, err := serializeRanking("2021-10-31", domain.RankingCount{State: "CA", Count: 31}, testBuiltAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("2021-10-31/CA"), msg.Key)
	assert.JSONEq(t, `{"date":"2021-10-31","state":"CA","count":31}`, string(msg.Value))
	assert.Equal(t, []byte(TableRanking), msg.Headers[0].Value)
}

func TestSnapshotMessages(t *testing.T) {
	snap := &domain.Snapshot{
		Growth: []domain.GrowthRecord{
			{RegionID: 1, Window: domain.WindowYTD, Percent: 4},
			{RegionID: 2, Window: domain.WindowYTD, Percent: math.NaN()},
		},
		Rankings: []domain.Ranking{
			{Date: "2021-10-31", Counts: []domain.RankingCount{{State: "AK", Count: 1}, {State: "CA", Count: 1}}},
			{Date: "2018-10-31", Counts: []domain.RankingCount{{State: "CA", Count: 2}}},
		},
		BuiltAt: time.Date(2021, time.November, 15, 3, 0, 0, 0, time.FixedZone("EST", -5*3600)),
	}

	msgs, err := snapshotMessages(snap)
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	assert.Equal(t, "1/ytd", string(msgs[0].Key))
	assert.Equal(t, "2/ytd", string(msgs[1].Key))
	assert.Equal(t, "2021-10-31/AK", string(msgs[2].Key))
	assert.Equal(t, "2018-10-31/CA", string(msgs[4].Key))
	for _, m := range msgs {
		assert.Equal(t, testBuiltAt, string(m.Headers[1].Value))
	}
}

func TestSnapshotMessages_Empty(t *testing.T) {
	msgs, err := snapshotMessages(&domain.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
