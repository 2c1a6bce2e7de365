// File: services/team_board.go
package services

import (
	"context"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hspace-portal/catalog"
	"hspace-portal/dates"
	dberrors "hspace-portal/db/errors"
	"hspace-portal/logger"
	"hspace-portal/models"
)

// matchSampleSize caps the random-match result.
const matchSampleSize = 3

// ------------------ views ------------------

// PostView is a team post with the display fields the board renders.
type PostView struct {
	ID                    int64        `json:"id"`
	Title                 string       `json:"title"`
	Owner                 string       `json:"owner"`
	Summary               string       `json:"summary"`
	Requirements          string       `json:"requirements"`
	Tags                  []string     `json:"tags"`
	TeamSize              string       `json:"team_size"`
	Level                 string       `json:"level"`
	UseRandomMatching     bool         `json:"use_random_matching"`
	Phase                 models.Phase `json:"phase"`
	PhaseLabel            string       `json:"phase_label"`
	CreatedAt             time.Time    `json:"created_at"`
	ApplicantCount        int          `json:"applicant_count"`
	CompetitionTitle      string       `json:"competition_title"`
	CompetitionOrganizer  string       `json:"competition_organizer"`
	CompetitionSummary    string       `json:"competition_summary"`
	CompetitionMode       string       `json:"competition_mode"`
	CompetitionTags       []string     `json:"competition_tags"`
	CompetitionDifficulty string       `json:"competition_difficulty"`
	ApplyPeriod           string       `json:"apply_period"`
	EventPeriod           string       `json:"event_period"`
	ApplyBadge            string       `json:"apply_badge"`
	EventBadge            string       `json:"event_badge"`
	HasApplied            bool         `json:"has_applied"`
}

// CompetitionView is a competition card.
type CompetitionView struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Organizer   string   `json:"organizer"`
	Summary     string   `json:"summary"`
	Mode        string   `json:"mode"`
	Difficulty  string   `json:"difficulty"`
	CoverImage  string   `json:"cover_image"`
	Tags        []string `json:"tags"`
	ApplyPeriod string   `json:"apply_period"`
	EventPeriod string   `json:"event_period"`
	ApplyBadge  string   `json:"apply_badge"`
	EventBadge  string   `json:"event_badge"`
	Approved    bool     `json:"approved"`
}

// PostDetail is everything the team page shows.
type PostDetail struct {
	Post          PostView
	Raw           models.TeamPost
	Applications  []models.TeamApplication
	MyApplication *models.TeamApplication
}

// MatchView is one random-match candidate.
type MatchView struct {
	ID               int64        `json:"id"`
	Title            string       `json:"title"`
	Owner            string       `json:"owner"`
	Summary          string       `json:"summary"`
	TeamSize         string       `json:"team_size"`
	Level            string       `json:"level"`
	Phase            models.Phase `json:"phase"`
	CompetitionTitle string       `json:"competition_title"`
}

// ------------------ inputs ------------------

// PostInput is a submitted team-post form.
type PostInput struct {
	Title             string
	Owner             string
	Competition       string
	EventStart        string
	EventEnd          string
	Summary           string
	Requirements      string
	Tags              string
	TeamSize          string
	Level             string
	UseRandomMatching bool
	Phase             string
}

// ApplicationInput is a submitted application form. PostID is the raw form value.
type ApplicationInput struct {
	PostID        string
	ApplicantName string
	Contact       string
	Message       string
	DesiredRole   string
	Level         string
}

// Prefill seeds the team-post form.
type Prefill struct {
	Competition  string
	Title        string
	Summary      string
	Requirements string
	TeamSize     string
	Level        string
	EventStart   string
	EventEnd     string
}

var prefillKeys = []string{
	"prefill_competition", "prefill_title", "prefill_summary", "prefill_requirements",
	"prefill_team_size", "prefill_level", "prefill_event_start", "prefill_event_end",
}

func (p *Prefill) fields() []*string {
	return []*string{
		&p.Competition, &p.Title, &p.Summary, &p.Requirements,
		&p.TeamSize, &p.Level, &p.EventStart, &p.EventEnd,
	}
}

// Query encodes the non-empty fields as prefill_* query parameters.
func (p Prefill) Query() url.Values {
	q := url.Values{}
	for i, field := range p.fields() {
		if *field != "" {
			q.Set(prefillKeys[i], *field)
		}
	}
	return q
}

// PrefillFromQuery reads the prefill_* query parameters.
func PrefillFromQuery(q url.Values) Prefill {
	var p Prefill
	for i, field := range p.fields() {
		*field = q.Get(prefillKeys[i])
	}
	return p
}

// ------------------ service ------------------

// TeamBoardService serves the team-recruitment board.
type TeamBoardService struct {
	teams        TeamStore
	competitions CompetitionStore
	now          func() time.Time
	shuffle      func(n int, swap func(i, j int))
}

func NewTeamBoardService(teams TeamStore, competitions CompetitionStore) *TeamBoardService {
	return &TeamBoardService{
		teams:        teams,
		competitions: competitions,
		now:          time.Now,
		shuffle:      rand.Shuffle,
	}
}

// ParseTags splits a comma separated list, trimming entries and dropping empties.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ListPosts returns the posts of phase, newest first. Unknown phases list everything.
func (s *TeamBoardService) ListPosts(ctx context.Context, phase string, viewerID *int64) ([]PostView, error) {
	posts, err := s.teams.ListTeamPosts(ctx, models.SanitizePhase(phase), 0)
	if err != nil {
		logger.Error.Printf("ListPosts: failed to load posts: %v", err)
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, s.serializePost(p, viewerID))
	}
	return views, nil
}

// PhaseCounts returns the number of posts per tab; PhaseAll holds the total.
func (s *TeamBoardService) PhaseCounts(ctx context.Context) (map[models.Phase]int, error) {
	stored, err := s.teams.PhaseCounts(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Phase]int, len(models.PhaseTabs))
	total := 0
	for phase, n := range stored {
		counts[phase] = n
		total += n
	}
	for _, tab := range models.PhaseTabs {
		if _, ok := counts[tab]; !ok {
			counts[tab] = 0
		}
	}
	counts[models.PhaseAll] = total
	return counts, nil
}

// Competitions returns competitions newest first, only approved ones when approvedOnly.
func (s *TeamBoardService) Competitions(ctx context.Context, approvedOnly bool) ([]CompetitionView, error) {
	comps, err := s.competitions.ListCompetitions(ctx, approvedOnly)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]CompetitionView, 0, len(comps))
	for _, c := range comps {
		eventTarget := c.EventStart
		if eventTarget == "" {
			eventTarget = c.EventEnd
		}
		views = append(views, CompetitionView{
			ID:          c.ID,
			Title:       c.Title,
			Organizer:   c.Organizer,
			Summary:     c.Summary,
			Mode:        c.Mode,
			Difficulty:  c.Difficulty,
			CoverImage:  c.CoverImage,
			Tags:        ParseTags(c.Tags),
			ApplyPeriod: dates.Period(c.ApplyStart, c.ApplyEnd),
			EventPeriod: dates.Period(c.EventStart, c.EventEnd),
			ApplyBadge:  dates.Countdown(c.ApplyEnd, now),
			EventBadge:  dates.Countdown(eventTarget, now),
			Approved:    c.Approved,
		})
	}
	return views, nil
}

// PostDetail loads one post with its applications. A missing post is
// reported as dberrors.EntryNotFound.
func (s *TeamBoardService) PostDetail(ctx context.Context, postID int64, viewerID *int64) (PostDetail, error) {
	post, err := s.teams.GetTeamPost(ctx, postID)
	if err != nil {
		return PostDetail{}, err
	}

	detail := PostDetail{
		Post:         s.serializePost(post, viewerID),
		Raw:          post,
		Applications: post.Applications,
	}
	if viewerID != nil {
		for i := range post.Applications {
			app := post.Applications[i]
			if app.UserID != nil && *app.UserID == *viewerID {
				detail.MyApplication = &app
				break
			}
		}
	}
	return detail, nil
}

// SubmitPost creates a post. The competition name links to an existing
// competition on an exact title match and is kept as free text otherwise.
func (s *TeamBoardService) SubmitPost(ctx context.Context, in PostInput) (Notice, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return failure("Please enter a team or project name."), nil
	}

	phase := models.SanitizePhase(in.Phase)
	if phase == models.PhaseAll {
		phase = models.PhaseRecruiting
	}

	post := models.TeamPost{
		EventStart:        dates.Persist(in.EventStart),
		EventEnd:          dates.Persist(in.EventEnd),
		Title:             title,
		Owner:             strings.TrimSpace(in.Owner),
		Summary:           in.Summary,
		Requirements:      in.Requirements,
		Tags:              in.Tags,
		TeamSize:          in.TeamSize,
		UseRandomMatching: in.UseRandomMatching,
		Phase:             phase,
	}
	if models.IsLevel(in.Level) {
		post.Level = in.Level
	}

	if name := strings.TrimSpace(in.Competition); name != "" {
		comp, err := s.competitions.GetCompetitionByTitle(ctx, name)
		switch {
		case err == nil:
			post.CompetitionID = &comp.ID
		case dberrors.IsEntryNotFound(err):
			post.CustomCompetition = name
		default:
			return Notice{}, err
		}
	}

	if err := s.teams.CreateTeamPost(ctx, &post); err != nil {
		logger.Error.Printf("SubmitPost: failed to create post %q: %v", title, err)
		return Notice{}, err
	}
	logger.Info.Printf("SubmitPost: created team post %d (%q, phase=%s)", post.ID, post.Title, post.Phase)
	return success("Your team post has been published."), nil
}

// SubmitApplication files an application. A second application by the same
// user to the same post is a no-op reported with an info notice.
func (s *TeamBoardService) SubmitApplication(ctx context.Context, in ApplicationInput, userID *int64) (Notice, error) {
	postID, err := strconv.ParseInt(strings.TrimSpace(in.PostID), 10, 64)
	if err != nil {
		return failure("Could not find the team to apply to."), nil
	}

	post, err := s.teams.GetTeamPost(ctx, postID)
	if dberrors.IsEntryNotFound(err) {
		return failure("That team could not be found."), nil
	}
	if err != nil {
		return Notice{}, err
	}

	if userID != nil {
		_, err := s.teams.GetApplicationByPostAndUser(ctx, post.ID, *userID)
		if err == nil {
			logger.Debug.Printf("SubmitApplication: user %d already applied to post %d", *userID, post.ID)
			return info("You have already applied to this team."), nil
		}
		if !dberrors.IsEntryNotFound(err) {
			return Notice{}, err
		}
	}

	app := models.TeamApplication{
		PostID:        post.ID,
		UserID:        userID,
		ApplicantName: strings.TrimSpace(in.ApplicantName),
		Contact:       in.Contact,
		Message:       in.Message,
		DesiredRole:   in.DesiredRole,
		Level:         in.Level,
	}
	if err := s.teams.CreateTeamApplication(ctx, &app); err != nil {
		logger.Error.Printf("SubmitApplication: failed to store application for post %d: %v", post.ID, err)
		return Notice{}, err
	}
	logger.Info.Printf("SubmitApplication: application %d filed for post %d", app.ID, post.ID)
	return success("Application received. It will be passed to the team leader."), nil
}

// RandomMatch returns up to three posts sampled uniformly without replacement
// from those matching filter, or from all posts when none match.
func (s *TeamBoardService) RandomMatch(ctx context.Context, filter models.MatchFilter) ([]MatchView, error) {
	posts, err := s.teams.FindTeamPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		posts, err = s.teams.FindTeamPosts(ctx, models.MatchFilter{})
		if err != nil {
			return nil, err
		}
	}

	s.shuffle(len(posts), func(i, j int) { posts[i], posts[j] = posts[j], posts[i] })
	if len(posts) > matchSampleSize {
		posts = posts[:matchSampleSize]
	}

	matches := make([]MatchView, 0, len(posts))
	for _, p := range posts {
		matches = append(matches, MatchView{
			ID:               p.ID,
			Title:            p.Title,
			Owner:            p.Owner,
			Summary:          p.Summary,
			TeamSize:         p.TeamSize,
			Level:            p.Level,
			Phase:            p.Phase,
			CompetitionTitle: competitionTitle(p),
		})
	}
	return matches, nil
}

// Prefill builds the team-post form contents for a catalog event.
func (s *TeamBoardService) Prefill(ev catalog.Event) Prefill {
	var requirements []string
	if ev.Format != "" {
		requirements = append(requirements, "Format: "+ev.Format)
	}
	if ev.Onsite != nil {
		if *ev.Onsite {
			requirements = append(requirements, "Onsite")
		} else {
			requirements = append(requirements, "Online")
		}
	}
	if ev.Start.Valid() && ev.Finish.Valid() {
		requirements = append(requirements, "Period: "+ev.StartDisplay+" ~ "+ev.FinishDisplay)
	}
	if ev.Location != "" {
		requirements = append(requirements, "Location: "+ev.Location)
	}

	p := Prefill{
		Competition:  ev.Title,
		Summary:      ev.DescriptionShort,
		Requirements: strings.Join(requirements, " / "),
		EventStart:   dates.DateTimeLocal(ev.Start),
		EventEnd:     dates.DateTimeLocal(ev.Finish),
	}
	if ev.Title != "" {
		p.Title = ev.Title + " team recruitment"
	}
	return p
}

// serializePost derives the display fields. The post's own event window wins
// over the competition's; the apply window always comes from the competition.
func (s *TeamBoardService) serializePost(p models.TeamPost, viewerID *int64) PostView {
	comp := p.Competition
	view := PostView{
		ID:                p.ID,
		Title:             p.Title,
		Owner:             p.Owner,
		Summary:           p.Summary,
		Requirements:      p.Requirements,
		Tags:              ParseTags(p.Tags),
		TeamSize:          p.TeamSize,
		Level:             p.Level,
		UseRandomMatching: p.UseRandomMatching,
		Phase:             p.Phase,
		PhaseLabel:        p.Phase.Label(),
		CreatedAt:         p.CreatedAt,
		ApplicantCount:    len(p.Applications),
		CompetitionTitle:  competitionTitle(p),
		CompetitionTags:   []string{},
	}

	var applyStart, applyEnd string
	eventStart, eventEnd := p.EventStart, p.EventEnd
	if comp != nil {
		view.CompetitionOrganizer = comp.Organizer
		view.CompetitionSummary = comp.Summary
		view.CompetitionMode = comp.Mode
		view.CompetitionTags = ParseTags(comp.Tags)
		view.CompetitionDifficulty = comp.Difficulty
		applyStart, applyEnd = comp.ApplyStart, comp.ApplyEnd
		if eventStart == "" {
			eventStart = comp.EventStart
		}
		if eventEnd == "" {
			eventEnd = comp.EventEnd
		}
	}

	now := s.now()
	view.ApplyPeriod = dates.Period(applyStart, applyEnd)
	view.EventPeriod = dates.Period(eventStart, eventEnd)
	view.ApplyBadge = dates.Countdown(applyEnd, now)
	view.EventBadge = dates.Countdown(eventStart, now)

	if viewerID != nil {
		for _, app := range p.Applications {
			if app.UserID != nil && *app.UserID == *viewerID {
				view.HasApplied = true
				break
			}
		}
	}
	return view
}

func competitionTitle(p models.TeamPost) string {
	if p.Competition != nil {
		return p.Competition.Title
	}
	return p.CustomCompetition
}
