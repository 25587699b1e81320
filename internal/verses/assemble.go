package verses

import "quran-mood-gateway/pkg/types"

// Assemble drops failed slots, keeping the order of the rest. It fails only
// when nothing was fetched.
func Assemble(mood string, results []*types.Verse) (*types.MoodResponse, error) {
	verses := make([]*types.Verse, 0, len(results))
	for _, v := range results {
		if v != nil {
			verses = append(verses, v)
		}
	}
	if len(verses) == 0 {
		return nil, ErrNoContentFetched
	}
	return &types.MoodResponse{Mood: mood, Verses: verses}, nil
}
