// File: services/wargame_service.go
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	dberrors "hspace-portal/db/errors"
	"hspace-portal/logger"
	"hspace-portal/metrics"
	"hspace-portal/models"
)

const (
	communityReward    = 80
	defaultCategory    = "Misc"
	dashboardListLimit = 5
	systemAuthor       = "System"
)

var seedChallenges = []models.WargameChallenge{
	{
		Title:        "Satellite Beacon",
		Summary:      "Analyze the beacon signal broadcast from the space station and recover the flag. A light cipher warm-up.",
		Difficulty:   models.LevelBeginner,
		Category:     "Crypto",
		FlagAnswer:   "FLAG{ORBITAL_SIGNAL}",
		Hint:         "Caesar with a period of 13",
		RewardPoints: 50,
	},
	{
		Title:        "Nebula Terminal",
		Summary:      "Follow the logs left on a locked terminal and restore the administrator token.",
		Difficulty:   models.LevelIntermediate,
		Category:     "Pwnable",
		FlagAnswer:   "FLAG{STACK_WALKER}",
		Hint:         "Stack overflow",
		RewardPoints: 120,
	},
	{
		Title:        "Black Hole Storage",
		Summary:      "An S3 compatible bucket is misconfigured. Find the flag in the exposed backup.",
		Difficulty:   models.LevelAdvanced,
		Category:     "Cloud",
		FlagAnswer:   "FLAG{PUBLIC_BUCKET_MISCONFIG}",
		Hint:         "Check the list permission",
		RewardPoints: 200,
	},
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadConfig locates community attachments. Dir must live under StaticDir so
// the stored path can be served as a static file.
type UploadConfig struct {
	Dir               string
	StaticDir         string
	AllowedExtensions []string
}

// Dashboard is everything the wargame page shows.
type Dashboard struct {
	Featured        *models.ChallengeView
	Challenges      []models.ChallengeView
	Stats           models.WargameStats
	RecentCreations []models.ChallengeView
	Leaderboard     []models.SolverRank
	Filters         models.ChallengeFilter
	Categories      []string
	UserStats       *models.UserWargameStats
	RecentAttempts  []models.AttemptView
}

// PublishInput is a submitted community challenge.
type PublishInput struct {
	Title      string
	Summary    string
	Difficulty string
	Category   string
	Flag       string
	Hint       string
	Attachment *multipart.FileHeader
}

type WargameService struct {
	store   WargameStore
	uploads UploadConfig
	metrics metrics.Publisher

	seedOnce sync.Once
	seedErr  error
}

func NewWargameService(store WargameStore, uploads UploadConfig, publisher metrics.Publisher) *WargameService {
	if publisher == nil {
		publisher = metrics.Noop{}
	}
	return &WargameService{store: store, uploads: uploads, metrics: publisher}
}

// EnsureSeeds creates the system challenges whose titles are not stored yet.
// It runs once per service; a failure is remembered and returned again.
func (s *WargameService) EnsureSeeds(ctx context.Context) error {
	s.seedOnce.Do(func() {
		s.seedErr = s.createSeeds(ctx)
	})
	return s.seedErr
}

func (s *WargameService) createSeeds(ctx context.Context) error {
	titles, err := s.store.ListChallengeTitles(ctx)
	if err != nil {
		return err
	}
	existing := make(map[string]bool, len(titles))
	for _, t := range titles {
		existing[t] = true
	}

	for _, seed := range seedChallenges {
		if existing[seed.Title] {
			continue
		}
		ch := seed
		ch.AuthorName = systemAuthor
		if err := s.store.CreateChallenge(ctx, &ch); err != nil {
			return err
		}
		logger.Info.Printf("EnsureSeeds: created system challenge %q", ch.Title)
	}
	return nil
}

// Dashboard assembles the board for the given filter. viewerID may be nil.
func (s *WargameService) Dashboard(ctx context.Context, filter models.ChallengeFilter, viewerID *int64) (Dashboard, error) {
	if err := s.EnsureSeeds(ctx); err != nil {
		logger.Error.Printf("Dashboard: seeding failed: %v", err)
		return Dashboard{}, err
	}

	filter = normalizeFilter(filter)
	dash := Dashboard{Filters: filter}

	var err error
	if dash.Challenges, err = s.store.ListChallenges(ctx, filter); err != nil {
		return Dashboard{}, err
	}
	if len(dash.Challenges) > 0 {
		featured := dash.Challenges[0]
		dash.Featured = &featured
	}
	if dash.Stats, err = s.store.WargameStats(ctx); err != nil {
		return Dashboard{}, err
	}
	if dash.RecentCreations, err = s.store.RecentCommunityChallenges(ctx, dashboardListLimit); err != nil {
		return Dashboard{}, err
	}
	if dash.Categories, err = s.store.ListCategories(ctx); err != nil {
		return Dashboard{}, err
	}
	if dash.Leaderboard, err = s.store.SolverLeaderboard(ctx, dashboardListLimit); err != nil {
		return Dashboard{}, err
	}

	if viewerID != nil {
		stats, err := s.store.UserWargameStats(ctx, *viewerID)
		if err != nil {
			return Dashboard{}, err
		}
		dash.UserStats = &stats
		if dash.RecentAttempts, err = s.store.RecentAttempts(ctx, *viewerID, dashboardListLimit); err != nil {
			return Dashboard{}, err
		}
	}
	return dash, nil
}

func normalizeFilter(f models.ChallengeFilter) models.ChallengeFilter {
	if f.Difficulty == "" {
		f.Difficulty = "all"
	}
	if f.Category == "" {
		f.Category = "all"
	}
	f.Search = strings.TrimSpace(f.Search)
	switch f.Sort {
	case models.SortNewest, models.SortOldest, models.SortReward, models.SortPopular:
	default:
		f.Sort = models.SortNewest
	}
	return f
}

// Attempt records a flag submission for the challenge named by the raw form id.
func (s *WargameService) Attempt(ctx context.Context, userID int64, challengeID, flag string) (Notice, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(challengeID), 10, 64)
	if err != nil {
		return failure("That challenge could not be found."), nil
	}
	ch, err := s.store.GetChallenge(ctx, id)
	if dberrors.IsEntryNotFound(err) {
		return failure("That challenge could not be found."), nil
	}
	if err != nil {
		return Notice{}, err
	}

	flag = strings.TrimSpace(flag)
	correct := subtle.ConstantTimeCompare([]byte(flag), []byte(ch.FlagAnswer)) == 1
	attempt := models.WargameAttempt{
		ChallengeID:   ch.ID,
		UserID:        &userID,
		SubmittedFlag: flag,
		IsCorrect:     correct,
	}
	if err := s.store.CreateAttempt(ctx, &attempt); err != nil {
		logger.Error.Printf("Attempt: failed to record attempt on challenge %d: %v", ch.ID, err)
		return Notice{}, err
	}

	if correct {
		s.metrics.PutMetric("WargameSolves", 1, metrics.UnitCount)
		logger.Info.Printf("Attempt: user %d solved challenge %d", userID, ch.ID)
		return success(fmt.Sprintf("You solved %s!", ch.Title)), nil
	}
	logger.Debug.Printf("Attempt: user %d missed challenge %d", userID, ch.ID)
	return warning("Not quite. Check the hint and try again."), nil
}

// Publish stores a community challenge with an optional attachment.
func (s *WargameService) Publish(ctx context.Context, author models.User, in PublishInput) (Notice, error) {
	title := strings.TrimSpace(in.Title)
	summary := strings.TrimSpace(in.Summary)
	flag := strings.TrimSpace(in.Flag)
	if title == "" || summary == "" || flag == "" {
		return failure("Title, description and flag are required."), nil
	}

	difficulty := strings.TrimSpace(in.Difficulty)
	if !models.IsLevel(difficulty) {
		difficulty = models.LevelIntermediate
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultCategory
	}

	var attachmentPath string
	if in.Attachment != nil && in.Attachment.Filename != "" {
		if !s.allowedAttachment(in.Attachment.Filename) {
			return failure("That attachment type is not allowed. Upload an archive or a document."), nil
		}
		path, err := s.saveAttachment(in.Attachment)
		if err != nil {
			logger.Error.Printf("Publish: failed to save attachment %q: %v", in.Attachment.Filename, err)
			return failure("The file could not be saved. Please try again later."), nil
		}
		attachmentPath = path
	}

	ch := models.WargameChallenge{
		Title:          title,
		Summary:        summary,
		Difficulty:     difficulty,
		Category:       category,
		FlagAnswer:     flag,
		Hint:           strings.TrimSpace(in.Hint),
		RewardPoints:   communityReward,
		AttachmentPath: attachmentPath,
		IsCommunity:    true,
		AuthorID:       &author.ID,
		AuthorName:     author.Username,
	}
	if err := s.store.CreateChallenge(ctx, &ch); err != nil {
		return Notice{}, err
	}
	logger.Info.Printf("Publish: user %s published challenge %d (%q)", author.Username, ch.ID, ch.Title)
	return success("Your challenge has been uploaded. It will be shared after a quick review."), nil
}

func (s *WargameService) allowedAttachment(filename string) bool {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return false
	}
	ext := strings.ToLower(filename[dot+1:])
	for _, allowed := range s.uploads.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// secureFilename strips directories and anything outside [A-Za-z0-9._-].
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}

// saveAttachment writes the upload as <uuid>_<name> and returns its path
// relative to the static directory.
func (s *WargameService) saveAttachment(fh *multipart.FileHeader) (string, error) {
	name := secureFilename(fh.Filename)
	if name == "" {
		return "", errors.New("empty attachment name")
	}

	if err := os.MkdirAll(s.uploads.Dir, 0o755); err != nil {
		return "", err
	}
	target := filepath.Join(s.uploads.Dir, strings.ReplaceAll(uuid.NewString(), "-", "")+"_"+name)

	rel, err := filepath.Rel(s.uploads.StaticDir, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.New("upload folder must live inside the static directory")
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
