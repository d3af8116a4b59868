package playback

import (
	"strings"

	"github.com/hazadus/go-playlist/internal/data"
)

// Filter возвращает позиции треков, у которых название или исполнитель содержат query
// без учета регистра. Пустой запрос возвращает все позиции в исходном порядке.
func Filter(tracks []data.Track, query string) []int {
	needle := strings.ToLower(query)

	matched := make([]int, 0, len(tracks))
	for i := range tracks {
		if needle == "" ||
			strings.Contains(strings.ToLower(tracks[i].Title), needle) ||
			strings.Contains(strings.ToLower(tracks[i].Artist), needle) {
			matched = append(matched, i)
		}
	}
	return matched
}
