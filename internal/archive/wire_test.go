package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediahub/pkg/models"
)

func u32(v uint32) *uint32 { return &v }
func str(s string) *string { return &s }
func f64(v float64) *float64 { return &v }

func TestWireRoundTripMovie(t *testing.T) {
	item := models.NewMediaItem("Akira", models.NewMovie(models.WatchDone))
	item.SetScore(9.0)
	item.Tags.Add("classic")
	item.Tags.Add(models.FavoriteTag)

	flat := FromMediaItem(&item)
	assert.Equal(t, "movie", flat.MediaType)
	assert.Equal(t, "completed", flat.Status)
	assert.True(t, flat.Favorite)

	back, err := flat.ToMediaItem()
	require.NoError(t, err)
	assert.Equal(t, item.ID, back.ID)
	assert.Equal(t, item.Kind, back.Kind)
	assert.Equal(t, item.Score, back.Score)
	assert.Equal(t, item.Tags, back.Tags)
}

func TestWireRoundTripReadable(t *testing.T) {
	item := models.NewMediaItem("Tower of God", models.NewReadable(
		models.Webtoon,
		models.Progress{Current: 150, Total: u32(588)},
		models.Reading,
	))
	item.SetGlobalScore(8.6)
	ext := uint32(95897)
	item.ExternalID = &ext
	item.Source = str("anilist")

	flat := FromMediaItem(&item)
	assert.Equal(t, "webtoon", flat.MediaType)
	assert.Equal(t, "reading", flat.Status)
	require.NotNil(t, flat.ExternalID)
	assert.Equal(t, "95897", *flat.ExternalID)

	back, err := flat.ToMediaItem()
	require.NoError(t, err)
	assert.Equal(t, item.Kind, back.Kind)
	assert.Equal(t, item.GlobalScore, back.GlobalScore)
	assert.Equal(t, item.ExternalID, back.ExternalID)
}

func TestWireAnimeSeriesLabel(t *testing.T) {
	item := models.NewMediaItem("Frieren", models.NewSeries(
		models.Progress{Current: 5, Total: u32(28)},
		models.Watching,
	))

	// no source yet: plain series
	assert.Equal(t, "series", FromMediaItem(&item).MediaType)

	// sourced from AniList: shown as anime
	item.Source = str("anilist")
	assert.Equal(t, "anime", FromMediaItem(&item).MediaType)

	// any other source stays series
	item.Source = str("tmdb")
	assert.Equal(t, "series", FromMediaItem(&item).MediaType)
}

func TestWireCreateRequestGeneratesID(t *testing.T) {
	flat := APIMediaItem{
		ID:            "",
		Title:         "Attack on Titan",
		MediaType:     "anime",
		Status:        "watching",
		Progress:      5,
		TotalEpisodes: u32(25),
	}

	item, err := flat.ToMediaItem()
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", item.ID.String())
	assert.Equal(t, models.KindSeries, item.Kind.Tag())

	ws, ok := item.Kind.WatchStatus()
	require.True(t, ok)
	assert.Equal(t, models.Watching, ws)

	p, ok := item.Kind.Progress()
	require.True(t, ok)
	assert.Equal(t, uint32(5), p.Current)
	require.NotNil(t, p.Total)
	assert.Equal(t, uint32(25), *p.Total)

	// the anime label is re-derived from source on the way out
	assert.Equal(t, "series", FromMediaItem(&item).MediaType)
	item.Source = str("anilist")
	assert.Equal(t, "anime", FromMediaItem(&item).MediaType)
}

func TestWireUnknownMediaType(t *testing.T) {
	flat := APIMediaItem{Title: "Something", MediaType: "dvd"}
	_, err := flat.ToMediaItem()
	require.Error(t, err)

	var unknown *UnknownMediaTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "dvd", unknown.Value)
	assert.Contains(t, err.Error(), "dvd")
}

func TestWireInvalidID(t *testing.T) {
	flat := APIMediaItem{ID: "not-a-uuid", Title: "X", MediaType: "movie"}
	_, err := flat.ToMediaItem()

	var invalid *InvalidIDError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "not-a-uuid", invalid.Value)
}

func TestWireEmptyTitleRejected(t *testing.T) {
	flat := APIMediaItem{Title: "  ", MediaType: "movie"}
	_, err := flat.ToMediaItem()
	require.Error(t, err)
}

func TestWireUnknownStatusFallsBackToPlan(t *testing.T) {
	flat := APIMediaItem{Title: "X", MediaType: "series", Status: "rewatching"}
	item, err := flat.ToMediaItem()
	require.NoError(t, err)
	ws, _ := item.Kind.WatchStatus()
	assert.Equal(t, models.PlanToWatch, ws)

	flat = APIMediaItem{Title: "Y", MediaType: "manga", Status: "???"}
	item, err = flat.ToMediaItem()
	require.NoError(t, err)
	rs, _ := item.Kind.ReadStatus()
	assert.Equal(t, models.PlanToRead, rs)
}

func TestWireFavoriteInsertsTag(t *testing.T) {
	flat := APIMediaItem{
		Title:     "X",
		MediaType: "movie",
		Tags:      []string{"rewatch"},
		Favorite:  true,
	}
	item, err := flat.ToMediaItem()
	require.NoError(t, err)
	assert.True(t, item.Tags.Has(models.FavoriteTag))
	assert.True(t, item.Tags.Has("rewatch"))

	// already present stays a single set entry
	flat.Tags = []string{models.FavoriteTag}
	item, err = flat.ToMediaItem()
	require.NoError(t, err)
	assert.Equal(t, []string{models.FavoriteTag}, item.Tags.Sorted())
}

func TestWireExternalIDLenient(t *testing.T) {
	flat := APIMediaItem{Title: "X", MediaType: "movie", ExternalID: str("abc")}
	item, err := flat.ToMediaItem()
	require.NoError(t, err)
	assert.Nil(t, item.ExternalID, "non-numeric external id is dropped, not an error")
}

func TestWireScoreClampsOnInput(t *testing.T) {
	flat := APIMediaItem{Title: "X", MediaType: "movie", Score: f64(15.0)}
	item, err := flat.ToMediaItem()
	require.NoError(t, err)
	require.NotNil(t, item.Score)
	assert.Equal(t, uint8(100), *item.Score)
}

func TestWireTotalEpisodesDetachedFromDomain(t *testing.T) {
	item := models.NewMediaItem("Frieren", models.NewSeries(
		models.Progress{Current: 5, Total: u32(28)},
		models.Watching,
	))

	flat := FromMediaItem(&item)
	require.NotNil(t, flat.TotalEpisodes)
	*flat.TotalEpisodes = 99

	p, _ := item.Kind.Progress()
	assert.Equal(t, uint32(28), *p.Total, "mutating the wire shape must not reach the item")

	req := APIMediaItem{Title: "X", MediaType: "series", TotalEpisodes: u32(24)}
	back, err := req.ToMediaItem()
	require.NoError(t, err)
	*req.TotalEpisodes = 1

	p, _ = back.Kind.Progress()
	assert.Equal(t, uint32(24), *p.Total, "mutating the request must not reach the item")
}

func TestStatsFromItems(t *testing.T) {
	items := []APIMediaItem{
		{MediaType: "movie", Status: "completed"},
		{MediaType: "anime", Status: "watching"},
		{MediaType: "manga", Status: "reading"},
		{MediaType: "series", Status: "plan_to_watch"},
		{MediaType: "book", Status: "plan_to_read"},
		{MediaType: "manhwa", Status: "on_hold"},
		{MediaType: "movie", Status: "dropped"},
	}

	stats := StatsFromItems(items)
	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 2, stats.Watching)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.PlanToWatch)
	assert.Equal(t, 1, stats.OnHold)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 2, stats.Movies)
	assert.Equal(t, 1, stats.Series)
	assert.Equal(t, 1, stats.Anime)
	assert.Equal(t, 3, stats.Readable)
}
