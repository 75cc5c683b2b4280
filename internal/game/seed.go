package game

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var systemThemes = []struct {
	Name, Description string
}{
	{"General", "General everyday scenarios"},
	{"Food", "Food and dining related choices"},
	{"Entertainment", "Movies, games, and fun activities"},
	{"Travel", "Travel and adventure scenarios"},
	{"Career", "Work and career related decisions"},
	{"Superpowers", "Fictional abilities and powers"},
	{"Technology", "Tech and gadget related choices"},
	{"Lifestyle", "Daily life and habits"},
}

var sampleQuestions = []struct {
	Theme, OptionA, OptionB string
}{
	{"General", "Would you rather be able to fly or be invisible?", "Would you rather have super strength or super speed?"},
	{"Food", "Would you rather eat pizza every day or never eat pizza again?", "Would you rather only eat sweet foods or only eat savory foods?"},
	{"Entertainment", "Would you rather live in a world without music or without movies?", "Would you rather be in a comedy movie or a horror movie?"},
	{"Travel", "Would you rather travel to the past or the future?", "Would you rather explore space or the deep ocean?"},
	{"Superpowers", "Would you rather have the ability to read minds or predict the future?", "Would you rather control time or control gravity?"},
}

type SeedResult struct {
	ThemesCreated    int
	QuestionsCreated int
}

// Seed inserts the system themes and sample questions that are missing.
// Running it again changes nothing.
func Seed(ctx context.Context, db *gorm.DB) (SeedResult, error) {
	var res SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res = SeedResult{}
		ids := make(map[string]uint64, len(systemThemes))

		for _, st := range systemThemes {
			var t Theme
			err := tx.Where("name = ? AND created_by IS NULL", st.Name).First(&t).Error
			switch {
			case err == nil:
			case errors.Is(err, gorm.ErrRecordNotFound):
				t = Theme{Name: st.Name, Description: st.Description, IsPublic: true}
				if err := tx.Create(&t).Error; err != nil {
					return fmt.Errorf("seed theme %q: %w", st.Name, err)
				}
				res.ThemesCreated++
			default:
				return err
			}
			ids[st.Name] = t.ID
		}

		for _, sq := range sampleQuestions {
			themeID := ids[sq.Theme]
			var cnt int64
			if err := tx.Model(&Question{}).
				Where("theme_id = ? AND option_a = ? AND option_b = ? AND ai_generated = ?", themeID, sq.OptionA, sq.OptionB, false).
				Count(&cnt).Error; err != nil {
				return err
			}
			if cnt > 0 {
				continue
			}
			q := Question{ThemeID: themeID, OptionA: sq.OptionA, OptionB: sq.OptionB}
			if err := tx.Create(&q).Error; err != nil {
				return fmt.Errorf("seed question: %w", err)
			}
			res.QuestionsCreated++
		}
		return nil
	})
	return res, err
}
