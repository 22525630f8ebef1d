package tables

import (
	"context"
	"strings"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/textnorm"
)

// keywords are folded (lower case, no diacritics). Order is the tie-break.
var keywords = []struct {
	category extractionModel.TableCategory
	words    []string
}{
	{extractionModel.CategoryOrganization, []string{"kurulus", "hastane", "okul", "merkez", "lokasyon", "sube", "adres", "yerler"}},
	{extractionModel.CategoryQuantities, []string{"gramaj", "porsiyon", "miktar", "olcu", "(gr)", "(ml)", "litre"}},
	{extractionModel.CategoryMeals, []string{"ogun", "kahvalti", "ogle", "aksam", "menu", "yemek cesidi"}},
	{extractionModel.CategoryPersonnel, []string{"personel", "kadro", "calisan", "asci", "garson", "eleman", "unvan", "pozisyon"}},
	{extractionModel.CategoryEquipment, []string{"ekipman", "arac", "gerec", "cihaz"}},
	{extractionModel.CategoryMaterials, []string{"malzeme", "urun", "hammadde", "gida", "yiyecek", "icecek", "cinsi"}},
	{extractionModel.CategoryFinancial, []string{"maliyet", "butce", "fiyat", "ucret", "tutar", " tl", "bedel"}},
	{extractionModel.CategorySchedule, []string{"sure", "tarih", "takvim", "baslangic", "bitis", "donem"}},
	{extractionModel.CategoryTechnical, []string{"teknik", "standart", "sertifika", "hijyen", "iso", "gereksinim"}},
	{extractionModel.CategorySummary, []string{"ozet", "genel toplam", "istatistik", "ara toplam"}},
}

const (
	titleWeight  = 3
	headerWeight = 2
	cellWeight   = 1
	sampledRows  = 3
)

// KeywordClassifier labels tables from title, header and sample-row
// keywords. It needs no network and never fails.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(ctx context.Context, tables []extractionModel.Table) ([]extractionModel.TableCategory, error) {
	out := make([]extractionModel.TableCategory, len(tables))
	for i, t := range tables {
		if err := ctx.Err(); err != nil {
			return out[:i], err
		}
		out[i] = ClassifyByKeywords(t)
	}
	return out, nil
}

func ClassifyByKeywords(t extractionModel.Table) extractionModel.TableCategory {
	title := " " + textnorm.Fold(t.Title) + " "
	headers := " " + textnorm.Fold(strings.Join(t.Headers, " | ")) + " "
	var cells strings.Builder
	for _, row := range t.Rows[:min(sampledRows, len(t.Rows))] {
		cells.WriteString(textnorm.Fold(strings.Join(row, " | ")))
		cells.WriteString(" ")
	}
	sample := " " + cells.String()

	best := extractionModel.CategoryOther
	bestScore := 0
	for _, k := range keywords {
		score := 0
		for _, w := range k.words {
			if strings.Contains(title, w) {
				score += titleWeight
			}
			if strings.Contains(headers, w) {
				score += headerWeight
			}
			if strings.Contains(sample, w) {
				score += cellWeight
			}
		}
		if score > bestScore {
			best, bestScore = k.category, score
		}
	}
	return best
}
