package backend

import (
	"fmt"
	"strings"

	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
)

const narrativeSystem = `You are an expert on Turkish public procurement documents (ihale şartnameleri).
Answer with a single JSON object and nothing else. Use null for anything the text does not state.
Never put raw tab or newline characters inside JSON strings; use \n escapes.`

const narrativeFormat = `{
  "belge_turu": "teknik_sartname|ihale_ilani|sozlesme_tasarisi|idari_sartname|fiyat_teklif_mektubu|diger|belirsiz",
  "belge_turu_guven": 0.9,
  "veri_havuzu": {
    "ham_metin": "long narrative summary: institution, tender type, dates, service scope, special terms, risks",
    "kaynaklar": {
      "kisi_sayisi": {"deger": "value as written", "kaynak": "verbatim passage (200+ chars) proving it", "dosya": "document name"}
    }
  },
  "kurum": "string|null",
  "ihale_turu": "string|null",
  "ihale_tarihi": "YYYY-MM-DD|null",
  "teklif_son_tarih": "YYYY-MM-DD|null",
  "ise_baslama_tarih": "YYYY-MM-DD|null",
  "gun_sayisi": "number|null",
  "kisi_sayisi": "number|null",
  "ogun_sayisi": "number|null",
  "tahmini_butce": "number|null",
  "teslim_suresi": "string|null",
  "dagitim_yontemi": "string|null",
  "ozel_sartlar": ["at least 10 requirements or standards"],
  "riskler": ["at least 5 risks for the contractor"],
  "sertifikasyon_etiketleri": ["ISO 22000"],
  "ornek_menu_basliklari": ["dish names"],
  "guven_skoru": 0.85
}`

// NarrativePrompt asks for the narrative data pool of one chunk.
func NarrativePrompt(chunk commonModels.Chunk, documentName string) string {
	var b strings.Builder
	if chunk.TotalChunks > 1 {
		fmt.Fprintf(&b, "This text is part %d of %d of the document. Extract only what this part states.\n\n",
			chunk.Index+1, chunk.TotalChunks)
	}
	if documentName != "" {
		fmt.Fprintf(&b, "Document: %s\n\n", documentName)
	}
	b.WriteString("Extract the tender's data pool from the specification text below.\n")
	b.WriteString("Identify the document type first, then institution, dates, service scope (people, meals per day, days), special terms and risks.\n")
	b.WriteString("For every numeric field you fill, add a kaynaklar entry quoting the passage it came from.\n\n")
	b.WriteString("TEXT:\n")
	b.WriteString(chunk.Text)
	b.WriteString("\n\nRESPONSE FORMAT (JSON only):\n")
	b.WriteString(narrativeFormat)
	return b.String()
}

const tableSystem = `You extract tables from Turkish tender documents into structured JSON.
Answer with a single JSON object and nothing else. Never draw ASCII tables.`

const tableFormat = `{
  "tablolar": [
    {
      "baslik": "descriptive title",
      "headers": ["Column1", "Column2"],
      "rows": [["r1c1", "r1c2"], ["r2c1", "r2c2"]],
      "satir_sayisi": 2,
      "guven": 0.9
    }
  ]
}`

// TablePrompt asks for every table in one chunk. sections are the line
// windows the detector rated as table-like; they focus the model but the
// whole chunk is still sent.
func TablePrompt(chunk commonModels.Chunk, sections []string) string {
	var b strings.Builder
	if chunk.TotalChunks > 1 {
		fmt.Fprintf(&b, "This text is part %d of %d of the document.\n\n", chunk.Index+1, chunk.TotalChunks)
	}
	b.WriteString("Find every table in the text: meal distributions, portion weights, material lists, staff, equipment, costs, schedules and one-row summaries.\n")
	b.WriteString("Rules: use headers + rows arrays; every value is a string (\"250 gr\", \"365 gün\"); keep units; keep TOTAL rows; ")
	b.WriteString("pad short rows with \"\" so every row has as many cells as headers; at most 20 tables; ")
	b.WriteString("if there are no tables answer {\"tablolar\": []}.\n\n")
	if len(sections) > 0 {
		fmt.Fprintf(&b, "%d regions look like tables; start with these:\n", len(sections))
		for i, s := range sections {
			fmt.Fprintf(&b, "--- region %d ---\n%s\n", i+1, s)
		}
		b.WriteString("\n")
	}
	b.WriteString("TEXT:\n")
	b.WriteString(chunk.Text)
	b.WriteString("\n\nRESPONSE FORMAT (JSON only):\n")
	b.WriteString(tableFormat)
	return b.String()
}

const classifierSystem = `You categorize tables from Turkish tender documents. Answer with JSON only.`

// ClassifierPrompt describes a batch of tables by title, every header and
// a few sample rows.
func ClassifierPrompt(batch []extractionModel.Table, categories []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Categorize these %d tables. Decide by title first, then headers, then sample data.\n", len(batch))
	fmt.Fprintf(&b, "Allowed categories: %s. Use \"other\" only when nothing fits.\n\n", strings.Join(categories, ", "))
	for i, t := range batch {
		fmt.Fprintf(&b, "%d. TITLE: %q\n   %d COLUMNS: [%s]\n", i+1, t.Title, len(t.Headers), strings.Join(t.Headers, ", "))
		for _, row := range t.Rows[:min(3, len(t.Rows))] {
			fmt.Fprintf(&b, "     %s\n", strings.Join(row, " | "))
		}
		if len(t.Rows) > 4 {
			fmt.Fprintf(&b, "     ...\n     %s\n", strings.Join(t.Rows[len(t.Rows)-1], " | "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Answer {\"categories\": [...]} with exactly %d entries in table order.", len(batch))
	return b.String()
}
