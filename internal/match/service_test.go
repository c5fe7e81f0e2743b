package match

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/selection"
)

type fakeRepo struct {
	tags    []domain.Tag
	grants  []domain.Grant
	vcs     []domain.VC
	mentors []domain.Mentor
	links   map[domain.Kind]map[int64][]domain.Tag

	failOn string

	mu        sync.Mutex
	perCalls  int
	batchCall int
}

func (f *fakeRepo) fail(what string) error {
	if f.failOn == what {
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakeRepo) FetchAllTags(context.Context) ([]domain.Tag, error) {
	return f.tags, f.fail("tags")
}

func (f *fakeRepo) FetchGrants(context.Context) ([]domain.Grant, error) {
	return append([]domain.Grant(nil), f.grants...), f.fail("grants")
}

func (f *fakeRepo) FetchVCs(context.Context) ([]domain.VC, error) {
	return append([]domain.VC(nil), f.vcs...), f.fail("vcs")
}

func (f *fakeRepo) FetchMentors(context.Context) ([]domain.Mentor, error) {
	return append([]domain.Mentor(nil), f.mentors...), f.fail("mentors")
}

func (f *fakeRepo) FetchTagsForCandidate(_ context.Context, kind domain.Kind, id int64) ([]domain.Tag, error) {
	f.mu.Lock()
	f.perCalls++
	f.mu.Unlock()
	if err := f.fail("candidate_tags"); err != nil {
		return nil, err
	}
	return f.links[kind][id], nil
}

func (f *fakeRepo) FetchCandidateTags(_ context.Context, kind domain.Kind) (map[int64][]domain.Tag, error) {
	f.batchCall++
	if err := f.fail("candidate_tags"); err != nil {
		return nil, err
	}
	return f.links[kind], nil
}

var (
	seed     = domain.Tag{ID: 1, Name: "Seed", Category: domain.CategoryStage}
	fintech  = domain.Tag{ID: 5, Name: "Fintech", Category: domain.CategoryIndustry}
	agnostic = domain.Tag{ID: 9, Name: "Sector Agnostic", Category: domain.CategoryIndustry}
	dpiit    = domain.Tag{ID: 50, Name: "DPIIT Registration", Category: domain.CategoryRequirement}
	tech     = domain.Tag{ID: 3, Name: "Technology & Software", Category: domain.CategoryIndustry}
)

func newRepo() *fakeRepo {
	free, pricey := domain.RateFree, domain.Rate5KPlus
	return &fakeRepo{
		tags: []domain.Tag{seed, fintech, agnostic, dpiit, tech},
		grants: []domain.Grant{
			{ID: 1, Name: "Basic"},
			{ID: 2, Name: "Needs DPIIT", DPIITRequired: true},
			{ID: 3, Name: "Seed Fintech"},
		},
		vcs: []domain.VC{
			{ID: 10, Name: "Fintech Fund"},
			{ID: 11, Name: "Generalist"},
		},
		mentors: []domain.Mentor{
			{ID: 20, Name: "Pricey", RateTier: &pricey},
			{ID: 21, Name: "Free", RateTier: &free},
		},
		links: map[domain.Kind]map[int64][]domain.Tag{
			domain.KindGrant:  {2: {seed}, 3: {seed, fintech}},
			domain.KindVC:     {10: {fintech}, 11: {agnostic}},
			domain.KindMentor: {20: {tech}, 21: {tech}},
		},
	}
}

func service(repo Repository, mode string) *Service {
	m := config.Default().Matching
	m.TagFetch = mode
	m.TagFetchConcurrency = 2
	return NewService(repo, func() config.Matching { return m }, nil)
}

func TestGrantsFilterAndRank(t *testing.T) {
	for _, mode := range []string{config.TagFetchBatch, config.TagFetchPerCandidate} {
		t.Run(mode, func(t *testing.T) {
			repo := newRepo()
			out, err := service(repo, mode).Grants(context.Background(), selection.GrantSelection{Stage: []int64{1}, Industry: []int64{5}})
			require.NoError(t, err)

			assert.Equal(t, 1, out.Excluded)
			assert.Empty(t, out.MissingRequirementTags)
			require.Len(t, out.Results, 2)
			assert.Equal(t, int64(3), out.Results[0].Candidate.ID)
			assert.Equal(t, 70, out.Results[0].MatchScore)
			assert.Equal(t, 1, out.Results[0].Tier)
			assert.Equal(t, int64(1), out.Results[1].Candidate.ID)
			assert.Equal(t, 4, out.Results[1].Tier)

			if mode == config.TagFetchBatch {
				assert.Equal(t, 1, repo.batchCall)
				assert.Zero(t, repo.perCalls)
			} else {
				assert.Zero(t, repo.batchCall)
				assert.Equal(t, 2, repo.perCalls)
			}
		})
	}
}

func TestGrantsRequirementSelected(t *testing.T) {
	out, err := service(newRepo(), config.TagFetchBatch).Grants(context.Background(), selection.GrantSelection{Requirement: []int64{50}})
	require.NoError(t, err)
	assert.Zero(t, out.Excluded)
	assert.Len(t, out.Results, 3)
}

func TestGrantsMissingRequirementTag(t *testing.T) {
	repo := newRepo()
	repo.tags = []domain.Tag{seed, fintech}
	out, err := service(repo, config.TagFetchBatch).Grants(context.Background(), selection.GrantSelection{Requirement: []int64{50}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Excluded)
	assert.Equal(t, []string{"DPIIT Registration"}, out.MissingRequirementTags)
}

func TestVCsSectorAgnostic(t *testing.T) {
	out, err := service(newRepo(), config.TagFetchPerCandidate).VCs(context.Background(), selection.VCSelection{Industry: []int64{5}})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	for _, r := range out.Results {
		assert.Equal(t, 35, r.MatchScore)
		assert.Equal(t, 3, r.Tier)
		assert.Equal(t, "Speculative Match", r.TierLabel)
	}
	// equal tier and score keep store order
	assert.Equal(t, int64(10), out.Results[0].Candidate.ID)
}

func TestMentorsBudgetBonus(t *testing.T) {
	sel := selection.MentorSelection{Industries: []string{"Technology & Software"}, Budget: domain.RateFree}
	out, err := service(newRepo(), config.TagFetchBatch).Mentors(context.Background(), sel)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "Free", out.Results[0].Candidate.Name)
	assert.Equal(t, 70, out.Results[0].MatchScore)
	assert.Equal(t, 50, out.Results[1].MatchScore)
}

func TestFetchErrorsWrapRepositoryFetch(t *testing.T) {
	ctx := context.Background()
	for _, failOn := range []string{"grants", "tags", "vcs", "mentors", "candidate_tags"} {
		for _, mode := range []string{config.TagFetchBatch, config.TagFetchPerCandidate} {
			repo := newRepo()
			repo.failOn = failOn
			s := service(repo, mode)

			_, gErr := s.Grants(ctx, selection.GrantSelection{})
			_, vErr := s.VCs(ctx, selection.VCSelection{})
			_, mErr := s.Mentors(ctx, selection.MentorSelection{})

			var errs []error
			for _, err := range []error{gErr, vErr, mErr} {
				if err != nil {
					errs = append(errs, err)
				}
			}
			require.NotEmpty(t, errs, failOn)
			for _, err := range errs {
				assert.ErrorIs(t, err, ErrRepositoryFetch, failOn)
				assert.Contains(t, err.Error(), "connection refused")
			}
		}
	}
}

func TestEmptyDirectory(t *testing.T) {
	out, err := service(&fakeRepo{}, config.TagFetchPerCandidate).VCs(context.Background(), selection.VCSelection{})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
}
