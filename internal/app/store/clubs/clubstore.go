// internal/app/store/clubs/clubstore.go
package clubstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/clubhub/internal/app/system/dberr"
	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/uptrace/bun"
)

var (
	ErrNotFound  = errors.New("club not found")
	ErrConflict  = errors.New("club conflicts with a concurrent or existing record") // unique-key violation or lost lock race
	ErrBadStatus = errors.New("unknown club status")
)

// upsertAttempts bounds retries of the submission transaction after a
// deadlock or a racing insert of the same name.
const upsertAttempts = 3

// Submission is a validated president submission.
type Submission struct {
	Name             string
	Subject          string
	MeetingFrequency string
	MeetingTimeType  string
	MeetingTimeRange string
	MeetingRoom      string
	OpenToAll        bool
	PrereqRequired   bool
	Prerequisites    string
	Description      string
	VolunteerHours   bool
	WebsiteURL       *string
	PresidentContact *string

	MeetingDays []string // weekday names; unknown names are dropped
	Subfields   []string
	Categories  []string
	Fields      []string
}

// Detail is a club with its tag sets attached.
type Detail struct {
	models.Club

	Subfields   []string
	MeetingDays []string
	Categories  []string
	Fields      []string // field tags, or [subject] when the club has none
}

// Patch holds the admin-editable columns. Nil means unchanged.
type Patch struct {
	Description *string
	Status      *string
	WebsiteURL  *string // empty clears
	MeetingRoom *string
}

type Store struct {
	db bun.IDB
}

func New(db bun.IDB) *Store {
	return &Store{db: db}
}

// nameKeyPrefix matches uq_club_name and the legacy uq_club_name_code /
// uq_club_name_contact indexes.
const nameKeyPrefix = "uq_club_name"

// lostRace reports a deadlock or a duplicate on the club name key: another
// transaction got there first and a retry will see its row.
func lostRace(err error) bool {
	return dberr.IsDeadlock(err) || strings.HasPrefix(dberr.DuplicateKey(err), nameKeyPrefix)
}

// classify maps engine errors the caller can act on to sentinels, keeping the
// original error in the chain for diagnostics.
func classify(err error) error {
	if lostRace(err) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

/* -------------------------------------------------------------------------- */
/* submission upsert                                                          */
/* -------------------------------------------------------------------------- */

// Upsert creates the club named sub.Name or updates the existing one, then
// replaces its meeting days, subfields, categories and fields. Everything
// happens in one transaction; on any error nothing is written.
func (s *Store) Upsert(ctx context.Context, sub Submission) (int64, error) {
	var (
		id  int64
		err error
	)
	for attempt := 1; attempt <= upsertAttempts; attempt++ {
		err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			var txErr error
			id, txErr = upsertTx(ctx, tx, sub)
			return txErr
		})
		if err == nil {
			return id, nil
		}
		if !lostRace(err) || ctx.Err() != nil {
			break
		}
	}
	return 0, classify(err)
}

func upsertTx(ctx context.Context, tx bun.Tx, sub Submission) (int64, error) {
	now := time.Now().UTC()
	club := models.Club{
		Name:             sub.Name,
		Subject:          sub.Subject,
		MeetingFrequency: sub.MeetingFrequency,
		MeetingTimeType:  sub.MeetingTimeType,
		MeetingTimeRange: sub.MeetingTimeRange,
		MeetingRoom:      sub.MeetingRoom,
		OpenToAll:        sub.OpenToAll,
		PrereqRequired:   sub.PrereqRequired,
		Prerequisites:    sub.Prerequisites,
		Description:      sub.Description,
		VolunteerHours:   sub.VolunteerHours,
		WebsiteURL:       sub.WebsiteURL,
		PresidentContact: sub.PresidentContact,
		UpdatedAt:        now,
	}

	// Lowest id wins when a legacy install still holds duplicate names.
	var existing int64
	err := tx.NewSelect().
		Model((*models.Club)(nil)).
		Column("id").
		Where("name = ?", sub.Name).
		OrderExpr("id ASC").
		Limit(1).
		For("UPDATE").
		Scan(ctx, &existing)

	switch {
	case err == nil:
		club.ID = existing
		cols := []string{"subject", "meeting_frequency", "meeting_time_type", "meeting_time_range",
			"meeting_room", "open_to_all", "prereq_required", "prerequisites", "description",
			"volunteer_hours", "website_url", "updated_at"}
		if sub.PresidentContact != nil {
			cols = append(cols, "president_contact")
		}
		if _, err := tx.NewUpdate().Model(&club).Column(cols...).WherePK().Exec(ctx); err != nil {
			return 0, fmt.Errorf("update club %d: %w", club.ID, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		club.Status = models.ClubApproved
		club.CreatedAt = now
		res, err := tx.NewInsert().Model(&club).Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("insert club: %w", err)
		}
		if club.ID, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("insert club id: %w", err)
		}
	default:
		return 0, fmt.Errorf("lock club by name: %w", err)
	}

	if err := replaceMeetingDays(ctx, tx, club.ID, sub.MeetingDays); err != nil {
		return 0, err
	}
	if err := replaceSubfields(ctx, tx, club.ID, sub.Subfields); err != nil {
		return 0, err
	}
	if err := replaceCategories(ctx, tx, club.ID, sub.Categories); err != nil {
		return 0, err
	}
	if err := replaceFields(ctx, tx, club.ID, sub.Fields); err != nil {
		return 0, err
	}
	return club.ID, nil
}

// uniq trims, drops empties and removes case-insensitive repeats. The link
// tables' default collation also folds accents, so label inserts use
// INSERT IGNORE for the repeats uniq cannot see ("Cafe" / "Café").
func uniq(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		k := strings.ToLower(v)
		if v == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

func replaceMeetingDays(ctx context.Context, tx bun.Tx, clubID int64, days []string) error {
	if _, err := tx.NewDelete().Model((*models.ClubMeetingDay)(nil)).Where("club_id = ?", clubID).Exec(ctx); err != nil {
		return fmt.Errorf("clear meeting days: %w", err)
	}
	var rows []models.ClubMeetingDay
	seen := map[int64]bool{}
	for _, d := range days {
		id, ok := models.DayID(strings.TrimSpace(d))
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, models.ClubMeetingDay{ClubID: clubID, DayID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert meeting days: %w", err)
	}
	return nil
}

func replaceSubfields(ctx context.Context, tx bun.Tx, clubID int64, labels []string) error {
	if _, err := tx.NewDelete().Model((*models.ClubSubfield)(nil)).Where("club_id = ?", clubID).Exec(ctx); err != nil {
		return fmt.Errorf("clear subfields: %w", err)
	}
	labels = uniq(labels)
	if len(labels) == 0 {
		return nil
	}

	subs := make([]models.Subfield, len(labels))
	for i, l := range labels {
		subs[i] = models.Subfield{Label: l}
	}
	if _, err := tx.NewInsert().Model(&subs).Ignore().Exec(ctx); err != nil {
		return fmt.Errorf("insert subfields: %w", err)
	}

	var ids []int64
	if err := tx.NewSelect().
		Model((*models.Subfield)(nil)).
		Column("id").
		Where("label IN (?)", bun.In(labels)).
		Scan(ctx, &ids); err != nil {
		return fmt.Errorf("select subfield ids: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	links := make([]models.ClubSubfield, len(ids))
	for i, id := range ids {
		links[i] = models.ClubSubfield{ClubID: clubID, SubfieldID: id}
	}
	if _, err := tx.NewInsert().Model(&links).Ignore().Exec(ctx); err != nil {
		return fmt.Errorf("insert club subfields: %w", err)
	}
	return nil
}

func replaceCategories(ctx context.Context, tx bun.Tx, clubID int64, cats []string) error {
	if _, err := tx.NewDelete().Model((*models.ClubCategory)(nil)).Where("club_id = ?", clubID).Exec(ctx); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	var rows []models.ClubCategory
	for _, c := range uniq(cats) {
		if !models.IsCategory(c) {
			continue
		}
		rows = append(rows, models.ClubCategory{ClubID: clubID, Category: c})
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert categories: %w", err)
	}
	return nil
}

func replaceFields(ctx context.Context, tx bun.Tx, clubID int64, fields []string) error {
	if _, err := tx.NewDelete().Model((*models.ClubField)(nil)).Where("club_id = ?", clubID).Exec(ctx); err != nil {
		return fmt.Errorf("clear fields: %w", err)
	}
	fields = uniq(fields)
	if len(fields) == 0 {
		return nil
	}
	rows := make([]models.ClubField, len(fields))
	for i, f := range fields {
		rows[i] = models.ClubField{ClubID: clubID, FieldLabel: f}
	}
	if _, err := tx.NewInsert().Model(&rows).Ignore().Exec(ctx); err != nil {
		return fmt.Errorf("insert fields: %w", err)
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* reads                                                                      */
/* -------------------------------------------------------------------------- */

// List returns clubs ordered by name. Only approved clubs are returned unless
// includePending is set, in which case every status is.
func (s *Store) List(ctx context.Context, includePending bool) ([]Detail, error) {
	var clubs []models.Club
	q := s.db.NewSelect().Model(&clubs).OrderExpr("name ASC, id ASC")
	if !includePending {
		q = q.Where("status = ?", models.ClubApproved)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return s.attach(ctx, clubs)
}

// ListAdmin returns every club regardless of status.
func (s *Store) ListAdmin(ctx context.Context) ([]Detail, error) {
	return s.List(ctx, true)
}

// Get returns one club with its tags.
func (s *Store) Get(ctx context.Context, id int64) (Detail, error) {
	var c models.Club
	if err := s.db.NewSelect().Model(&c).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}
	out, err := s.attach(ctx, []models.Club{c})
	if err != nil {
		return Detail{}, err
	}
	return out[0], nil
}

type tagRow struct {
	ClubID int64  `bun:"club_id"`
	Label  string `bun:"label"`
}

// attach loads the four tag sets for clubs with one IN query each.
func (s *Store) attach(ctx context.Context, clubs []models.Club) ([]Detail, error) {
	out := make([]Detail, len(clubs))
	if len(clubs) == 0 {
		return out, nil
	}

	ids := make([]int64, len(clubs))
	pos := make(map[int64]int, len(clubs))
	for i, c := range clubs {
		ids[i] = c.ID
		pos[c.ID] = i
		out[i] = Detail{
			Club:        c,
			Subfields:   []string{},
			MeetingDays: []string{},
			Categories:  []string{},
			Fields:      []string{},
		}
	}

	var sf, md, cats, fields []tagRow
	if err := s.db.NewSelect().
		TableExpr("club_subfields AS cs").
		ColumnExpr("cs.club_id, s.label").
		Join("JOIN subfields AS s ON s.id = cs.subfield_id").
		Where("cs.club_id IN (?)", bun.In(ids)).
		OrderExpr("s.label ASC").
		Scan(ctx, &sf); err != nil {
		return nil, fmt.Errorf("load subfields: %w", err)
	}
	if err := s.db.NewSelect().
		TableExpr("club_meeting_days AS cmd").
		ColumnExpr("cmd.club_id, d.name AS label").
		Join("JOIN meeting_days AS d ON d.id = cmd.day_id").
		Where("cmd.club_id IN (?)", bun.In(ids)).
		OrderExpr("d.id ASC").
		Scan(ctx, &md); err != nil {
		return nil, fmt.Errorf("load meeting days: %w", err)
	}
	if err := s.db.NewSelect().
		TableExpr("club_categories").
		ColumnExpr("club_id, category AS label").
		Where("club_id IN (?)", bun.In(ids)).
		OrderExpr("category ASC").
		Scan(ctx, &cats); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if err := s.db.NewSelect().
		TableExpr("club_fields").
		ColumnExpr("club_id, field_label AS label").
		Where("club_id IN (?)", bun.In(ids)).
		OrderExpr("field_label ASC").
		Scan(ctx, &fields); err != nil {
		return nil, fmt.Errorf("load fields: %w", err)
	}

	for _, r := range sf {
		d := &out[pos[r.ClubID]]
		d.Subfields = append(d.Subfields, r.Label)
	}
	for _, r := range md {
		d := &out[pos[r.ClubID]]
		d.MeetingDays = append(d.MeetingDays, r.Label)
	}
	for _, r := range cats {
		d := &out[pos[r.ClubID]]
		d.Categories = append(d.Categories, r.Label)
	}
	for _, r := range fields {
		d := &out[pos[r.ClubID]]
		d.Fields = append(d.Fields, r.Label)
	}

	for i := range out {
		if len(out[i].Fields) == 0 && out[i].Subject != "" {
			out[i].Fields = []string{out[i].Subject}
		}
	}
	return out, nil
}

/* -------------------------------------------------------------------------- */
/* admin mutations                                                            */
/* -------------------------------------------------------------------------- */

// Patch applies the non-nil fields of p to club id.
func (s *Store) Patch(ctx context.Context, id int64, p Patch) error {
	if p.Status != nil && !models.IsClubStatus(*p.Status) {
		return ErrBadStatus
	}

	return classify(s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var found int64
		err := tx.NewSelect().Model((*models.Club)(nil)).Column("id").Where("id = ?", id).For("UPDATE").Scan(ctx, &found)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		q := tx.NewUpdate().Model((*models.Club)(nil)).Where("id = ?", id).Set("updated_at = ?", time.Now().UTC())
		if p.Description != nil {
			q = q.Set("description = ?", *p.Description)
		}
		if p.Status != nil {
			q = q.Set("status = ?", *p.Status)
		}
		if p.WebsiteURL != nil {
			if *p.WebsiteURL == "" {
				q = q.Set("website_url = NULL")
			} else {
				q = q.Set("website_url = ?", *p.WebsiteURL)
			}
		}
		if p.MeetingRoom != nil {
			q = q.Set("meeting_room = ?", *p.MeetingRoom)
		}
		_, err = q.Exec(ctx)
		return err
	}))
}

// SetStatus moves club id to status.
func (s *Store) SetStatus(ctx context.Context, id int64, status string) error {
	return s.Patch(ctx, id, Patch{Status: &status})
}

// Delete removes club id; link rows go with it through ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*models.Club)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}
