package export

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ErrNotConfigured - kimlik dosyası veya spreadsheet id eksik. O çağrı için
// ölümcüldür ama scheduler sürecini düşürmez.
var ErrNotConfigured = errors.New("sheets export yapılandırılmamış")

// SheetWriter - uzak tabloyu küçük bir arayüzün arkasına alır; satır kurma ve
// tutulacak satırlara karar verme mantığı ağ olmadan test edilebilir.
type SheetWriter interface {
	// ReplaceRowsForDate - sekmede date kolonu dateISO olan tüm satırları
	// atıp yerine rows'u yazar; başlığı gerekiyorsa yeniden oturtur.
	ReplaceRowsForDate(ctx context.Context, tab string, dateISO string, header []string, rows [][]interface{}) error
}

// GoogleSheets - resmi Sheets API'si üzerinden SheetWriter implementasyonu.
type GoogleSheets struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

func NewGoogleSheets(ctx context.Context, credentialsPath, spreadsheetID string, logger *zap.Logger) (*GoogleSheets, error) {
	if credentialsPath == "" || spreadsheetID == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets istemcisi oluşturulamadı: %w", err)
	}

	return &GoogleSheets{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// ReplaceRowsForDate - rate limit'e takılmamak için satır başına silme değil,
// toplu değiştirme yapar: sekme bir kez okunur, hedef güne ait satırlar
// bellekte ayıklanır, yeni satırlar eklenir ve sekme tek update ile geri
// yazılır. Sekme başına sınırlı sayıda uzak çağrı.
func (g *GoogleSheets) ReplaceRowsForDate(ctx context.Context, tab string, dateISO string, header []string, rows [][]interface{}) error {
	if err := g.ensureTab(ctx, tab); err != nil {
		return err
	}

	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, tab).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s sekmesi okunamadı: %w", tab, err)
	}

	filtered := FilterRowsForDate(resp.Values, dateISO, header)
	filtered = append(filtered, rows...)

	if _, err := g.service.Spreadsheets.Values.Clear(g.spreadsheetID, tab, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s sekmesi temizlenemedi: %w", tab, err)
	}

	payload := &sheetsapi.ValueRange{Values: filtered}
	_, err = g.service.Spreadsheets.Values.Update(g.spreadsheetID, tab+"!A1", payload).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s sekmesi güncellenemedi: %w", tab, err)
	}

	g.logger.Debug("sekme güncellendi",
		zap.String("tab", tab),
		zap.String("date", dateISO),
		zap.Int("rows", len(rows)))
	return nil
}

// ensureTab - sekme yoksa oluşturur.
func (g *GoogleSheets) ensureTab(ctx context.Context, tab string) error {
	meta, err := g.service.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("spreadsheet okunamadı: %w", err)
	}

	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return nil
		}
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: tab},
			},
		}},
	}
	if _, err := g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s sekmesi oluşturulamadı: %w", tab, err)
	}
	return nil
}

// FilterRowsForDate - mevcut sekme içeriğinden başlığı oturtup hedef güne ait
// satırları ayıklar. Tarih karşılaştırması ilk kolonda ISO string eşitliğidir.
func FilterRowsForDate(existing [][]interface{}, dateISO string, header []string) [][]interface{} {
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}

	filtered := [][]interface{}{headerRow}

	for i, row := range existing {
		if i == 0 && rowEqualsHeader(row, header) {
			continue // başlık zaten eklendi, çoğaltma
		}
		if len(row) > 0 && fmt.Sprint(row[0]) == dateISO {
			continue
		}
		// Eski başlık farklıysa veri satırı sayılmaz, atılır
		if i == 0 && len(row) > 0 && fmt.Sprint(row[0]) == header[0] {
			continue
		}
		filtered = append(filtered, row)
	}

	return filtered
}

func rowEqualsHeader(row []interface{}, header []string) bool {
	if len(row) != len(header) {
		return false
	}
	for i, h := range header {
		if fmt.Sprint(row[i]) != h {
			return false
		}
	}
	return true
}
