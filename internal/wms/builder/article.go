package builder

import (
	"strconv"
	"strings"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// Article builds an upsert keyed by the product code. supplier and
// alternates are optional.
func Article(product *models.ProductProduct, price float64, supplier *models.ResPartner, alternates []*models.ResPartner) (*wms.ArticleDefinition, error) {
	if product == nil {
		return nil, &wms.ValidationError{Reason: "missing product"}
	}
	code := strings.TrimSpace(product.DefaultCode)
	if code == "" {
		return nil, wms.Validationf(wms.ErrMissingProductCode, "product %d (%s)", product.ID, product.Name)
	}

	art := &wms.ArticleDefinition{
		ArticleOperation:      wms.OperationCreateOrUpdate,
		ArticleIdentification: wms.IdentifyByArticleNumber,
		ArticleNumber:         code,
		ArticleName:           product.Name,
		BarCode:               product.Barcode,
		PurchasePrice:         price,
		ArticleUnitCode:       product.UomName,
	}
	if supplier != nil {
		s := Supplier(supplier)
		art.Supplier = &s
	}
	for _, alt := range alternates {
		if alt == nil || (supplier != nil && alt.ID == supplier.ID) {
			continue
		}
		if art.AlternateSuppliers == nil {
			art.AlternateSuppliers = &wms.AlternateSuppliers{}
		}
		art.AlternateSuppliers.Supplier = append(art.AlternateSuppliers.Supplier, Supplier(alt))
	}
	return art, nil
}

// Supplier builds a supplier block with its own address.
func Supplier(p *models.ResPartner) wms.Supplier {
	number := strconv.FormatInt(p.ID, 10)
	return wms.Supplier{
		SupplierOperation:      wms.OperationCreateOrUpdate,
		SupplierIdentification: wms.IdentifyBySupplierNumber,
		SupplierNumber:         orDefault(number, value(p.Ref)),
		Name:                   orDefault(blank, value(p.Name)),
		Address:                orDefault(blank, value(p.Street)),
		Address2:               orDefault(blank, value(p.Street2)),
		PostCode:               orDefault(blank, value(p.Zip)),
		City:                   orDefault(blank, value(p.City)),
		CountryStateCode:       p.StateCode,
		CountryCode:            orDefault(DefaultCountryCode, value(p.CountryCode)),
		TelePhone:              p.Phone,
		Email:                  p.Email,
		MobilePhone:            p.Mobile,
		Remark:                 p.Comment,
	}
}
