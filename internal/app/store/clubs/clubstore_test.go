package clubstore_test

import (
	"errors"
	"sort"
	"sync"
	"testing"

	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/schema"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/dalemusser/clubhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*clubstore.Store, *bun.DB) {
	t.Helper()
	db := testutil.SetupSchemaDB(t)
	return clubstore.New(db), db
}

func chessClub() clubstore.Submission {
	url := "https://chess.example.org"
	return clubstore.Submission{
		Name:             "Chess Club",
		Subject:          "Math",
		MeetingFrequency: "weekly",
		MeetingTimeType:  "lunch",
		MeetingRoom:      "B12",
		OpenToAll:        true,
		Description:      "Weekly games and puzzles.",
		WebsiteURL:       &url,
		MeetingDays:      []string{"Monday", "Wednesday"},
		Subfields:        []string{"Strategy"},
		Categories:       []string{"competition", "activity"},
		Fields:           []string{"Math"},
	}
}

func TestUpsert_IdenticalSubmissionIsIdempotent(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id1, err := store.Upsert(ctx, chessClub())
	require.NoError(t, err)
	first, err := store.Get(ctx, id1)
	require.NoError(t, err)

	id2, err := store.Upsert(ctx, chessClub())
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	second, err := store.Get(ctx, id2)
	require.NoError(t, err)
	require.Equal(t, first.MeetingDays, second.MeetingDays)
	require.Equal(t, first.Subfields, second.Subfields)
	require.Equal(t, first.Categories, second.Categories)
	require.Equal(t, first.Fields, second.Fields)

	var clubs, subfields int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clubs").Scan(&clubs))
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subfields").Scan(&subfields))
	require.Equal(t, 1, clubs)
	require.Equal(t, 1, subfields)
}

func TestUpsert_NewClubIsApprovedWithTags(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := store.Upsert(ctx, chessClub())
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Chess Club", got.Name)
	require.Equal(t, models.ClubApproved, got.Status)
	require.Equal(t, []string{"Monday", "Wednesday"}, got.MeetingDays)
	require.Equal(t, []string{"activity", "competition"}, got.Categories)
	require.Equal(t, []string{"Strategy"}, got.Subfields)
	require.Equal(t, []string{"Math"}, got.Fields)
	require.NotNil(t, got.WebsiteURL)
	require.Equal(t, "https://chess.example.org", *got.WebsiteURL)
	require.False(t, got.CreatedAt.IsZero())
}

func TestUpsert_ReplacesTagSets(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sub := chessClub()
	sub.Fields = []string{"A", "B", "C"}
	sub.Subfields = []string{"A", "B", "C"}
	id, err := store.Upsert(ctx, sub)
	require.NoError(t, err)

	sub.Fields = []string{"B", "D"}
	sub.Subfields = []string{"B", "D"}
	sub.MeetingDays = []string{"Friday"}
	sub.Categories = []string{"research"}
	_, err = store.Upsert(ctx, sub)
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"B", "D"}, got.Fields)
	require.Equal(t, []string{"B", "D"}, got.Subfields)
	require.Equal(t, []string{"Friday"}, got.MeetingDays)
	require.Equal(t, []string{"research"}, got.Categories)
}

func TestUpsert_DropsUnknownValuesAndRepeats(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sub := chessClub()
	sub.MeetingDays = []string{"Monday", "Saturday", "Monday"}
	sub.Categories = []string{"competition", "partying", "competition"}
	sub.Fields = []string{"Math", "math", " ", "Physics"}
	id, err := store.Upsert(ctx, sub)
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"Monday"}, got.MeetingDays)
	require.Equal(t, []string{"competition"}, got.Categories)
	require.Equal(t, []string{"Math", "Physics"}, got.Fields)
}

func TestUpsert_AccentVariantLabelsAreNotConflicts(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sub := chessClub()
	sub.Fields = []string{"Cafe", "Café", "Tea"}
	sub.Subfields = []string{"Résumé", "Resume"}
	id, err := store.Upsert(ctx, sub)
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Fields, 2)
	assert.Contains(t, got.Fields, "Tea")
	require.Len(t, got.Subfields, 1)

	// Resubmitting the same labels replaces them cleanly.
	id2, err := store.Upsert(ctx, sub)
	require.NoError(t, err)
	require.Equal(t, id, id2)
}

func TestUpsert_ConcurrentSameNameNeverMixesTags(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sets := [][]string{{"A", "B"}, {"C", "D"}, {"E", "F"}, {"G", "H"}}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[int64]bool{}
	)
	for _, set := range sets {
		wg.Add(1)
		go func(fields []string) {
			defer wg.Done()
			sub := chessClub()
			sub.Fields = fields
			sub.Subfields = fields
			id, err := store.Upsert(ctx, sub)
			if err != nil {
				assert.ErrorIs(t, err, clubstore.ErrConflict)
				return
			}
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}(set)
	}
	wg.Wait()

	require.Len(t, ids, 1, "every successful submission resolves to one club")

	clubs, err := store.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, clubs, 1)

	got := clubs[0]
	matched := false
	for _, set := range sets {
		if equalSorted(got.Fields, set) && equalSorted(got.Subfields, set) {
			matched = true
		}
	}
	require.True(t, matched, "fields %v / subfields %v come from different submissions", got.Fields, got.Subfields)
}

func equalSorted(a, b []string) bool {
	a = append([]string(nil), a...)
	b = append([]string(nil), b...)
	sort.Strings(a)
	sort.Strings(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestList_FiltersPendingAndFallsBackToSubject(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	chess, err := store.Upsert(ctx, chessClub())
	require.NoError(t, err)

	robotics := chessClub()
	robotics.Name = "Robotics"
	robotics.Subject = "Engineering"
	robotics.Fields = nil
	rid, err := store.Upsert(ctx, robotics)
	require.NoError(t, err)
	require.NoError(t, store.SetStatus(ctx, rid, models.ClubPending))

	public, err := store.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Equal(t, chess, public[0].ID)

	all, err := store.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Chess Club", all[0].Name)
	require.Equal(t, "Robotics", all[1].Name)
	require.Equal(t, []string{"Engineering"}, all[1].Fields)

	// No subject and no field tags: empty, not nil.
	testutil.ExecAll(t, db, "INSERT INTO clubs (name, subject) VALUES ('Quiet Club', NULL)")
	all, err = store.ListAdmin(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[1].Fields)
	require.Empty(t, all[1].Fields)
}

func TestGet_NotFound(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Get(ctx, 4242)
	require.ErrorIs(t, err, clubstore.ErrNotFound)
}

func TestPatch(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := store.Upsert(ctx, chessClub())
	require.NoError(t, err)

	desc, room, none := "New description", "C3", ""
	require.NoError(t, store.Patch(ctx, id, clubstore.Patch{
		Description: &desc,
		MeetingRoom: &room,
		WebsiteURL:  &none,
	}))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, desc, got.Description)
	require.Equal(t, room, got.MeetingRoom)
	require.Nil(t, got.WebsiteURL)
	require.Equal(t, models.ClubApproved, got.Status)

	bad := "archived"
	require.ErrorIs(t, store.Patch(ctx, id, clubstore.Patch{Status: &bad}), clubstore.ErrBadStatus)
	require.ErrorIs(t, store.Patch(ctx, id+100, clubstore.Patch{Description: &desc}), clubstore.ErrNotFound)
}

func TestDelete_CascadesToTags(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := store.Upsert(ctx, chessClub())
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, id))

	for _, table := range []string{"club_meeting_days", "club_subfields", "club_categories", "club_fields"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		require.Zero(t, n, table)
	}

	err = store.Delete(ctx, id)
	require.True(t, errors.Is(err, clubstore.ErrNotFound))
}

func TestUpsert_ResolvesLegacyDuplicatesToLowestID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.ExecAll(t, db,
		`CREATE TABLE clubs (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			president_code VARCHAR(64) NOT NULL,
			meeting_frequency VARCHAR(16) NOT NULL DEFAULT 'weekly',
			meeting_time_type VARCHAR(16) NOT NULL DEFAULT 'lunch',
			meeting_time_range VARCHAR(100) NOT NULL DEFAULT '',
			open_to_all TINYINT(1) NOT NULL DEFAULT 0,
			prereq_required TINYINT(1) NOT NULL DEFAULT 0,
			prerequisites TEXT,
			description TEXT,
			UNIQUE KEY uq_club_name_code (name, president_code)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`INSERT INTO clubs (name, president_code) VALUES ('Chess Club', 'a'), ('Chess Club', 'b')`,
	)
	_, err := schema.New(db, zap.NewNop()).Run(ctx)
	require.NoError(t, err)

	id, err := clubstore.New(db).Upsert(ctx, chessClub())
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
}
