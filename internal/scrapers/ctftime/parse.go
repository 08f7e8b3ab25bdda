package ctftime

import (
	"ctfrank/internal/apperr"
	"ctfrank/internal/ranking"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// the api has served `rating` both as an object keyed by season and as a
// list holding that object
func worldRankPaths(season string) []string {
	key := gjson.Escape(season)
	return []string{
		fmt.Sprintf("rating.%s.rating_place", key),
		fmt.Sprintf("rating.0.%s.rating_place", key),
	}
}

func parseWorldRank(body []byte, season string) (ranking.Rank, error) {
	if !gjson.ValidBytes(body) {
		return 0, apperr.DataShape("team api response is not valid json", nil)
	}

	for _, path := range worldRankPaths(season) {
		result := gjson.GetBytes(body, path)
		if !result.Exists() {
			continue
		}
		if result.Type != gjson.Number && result.Type != gjson.String {
			return 0, apperr.DataShape(fmt.Sprintf("%s has type %s", path, result.Type), nil)
		}
		rank, err := toRank(result.String())
		if err != nil {
			return 0, apperr.DataShape(path, err)
		}
		return rank, nil
	}

	return 0, apperr.DataShape(fmt.Sprintf("no rating_place for season %s", season), nil)
}

// older pages link the country place to /stats/<region>, newer ones to
// /stats/<season>/<region>
func regionSelectors(season, region string) []string {
	return []string{
		fmt.Sprintf(`a[href="/stats/%s/%s"]`, season, region),
		fmt.Sprintf(`a[href="/stats/%s"]`, region),
	}
}

func parseRegionRank(doc *goquery.Document, season, region string) (ranking.Rank, error) {
	widgetID := "rating_" + season
	widget := doc.Find(fmt.Sprintf(`[id="%s"]`, widgetID))
	if widget.Length() == 0 {
		return 0, apperr.DataShape(fmt.Sprintf("could not find #%s", widgetID), nil)
	}

	for _, selector := range regionSelectors(season, region) {
		anchor := widget.Find(selector).First()
		if anchor.Length() == 0 {
			continue
		}
		text := anchor.Text()
		rank, err := toRank(text)
		if err != nil {
			return 0, apperr.DataShape(fmt.Sprintf("region rank %q", text), err)
		}
		return rank, nil
	}

	return 0, apperr.DataShape(fmt.Sprintf("could not find a %s country place in #%s", region, widgetID), nil)
}
