package qr

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/amana-asso/delivery-service/internal/model"
)

// LinkBuilder produces the signed status-update links embedded in QR
// codes and driver emails. The short parameter names (a, t, fid, occ,
// d, s) are part of the public contract; printed QR codes in the field
// depend on them.
type LinkBuilder struct {
	baseURL string
	token   string
}

func NewLinkBuilder(baseURL, token string) *LinkBuilder {
	return &LinkBuilder{baseURL: baseURL, token: token}
}

// StatusURL builds the link that moves a delivery to the given status.
func (b *LinkBuilder) StatusURL(familyID int64, occasion, date string, status model.DeliveryStatus) string {
	q := url.Values{}
	q.Set("a", "update_status")
	q.Set("t", b.token)
	q.Set("fid", fmt.Sprintf("%d", familyID))
	q.Set("occ", occasion)
	q.Set("d", date)
	q.Set("s", string(status))
	return b.baseURL + "?" + q.Encode()
}

// StatusPNG renders the status link as a QR code image.
func (b *LinkBuilder) StatusPNG(familyID int64, occasion, date string, status model.DeliveryStatus, size int) ([]byte, error) {
	if size <= 0 {
		size = 300
	}
	png, err := qrcode.Encode(b.StatusURL(familyID, occasion, date, status), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
