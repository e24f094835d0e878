package builder

import (
	"strconv"

	"github.com/xelth-com/ongoingwms/internal/models"
	"github.com/xelth-com/ongoingwms/internal/wms"
)

// DefaultCountryCode is used when a partner has no country.
const DefaultCountryCode = "NO"

// CustomerInput is everything the customer block is built from.
// Order and OrderedBy are optional.
type CustomerInput struct {
	Order           *models.SaleOrder
	ShippingPartner *models.ResPartner
	OrderedBy       *models.ResPartner
	UseShippingName bool
}

// ShippingName resolves the consignee name. Without the company flag the
// ordered-by contact wins, then its parent, then the shipping partner's parent,
// then the shipping partner itself. A named contact is kept even when it
// belongs to a company; the Odoo addon let the parent company name override it.
func ShippingName(in CustomerInput) string {
	if in.UseShippingName {
		return orDefault(blank, partnerField(in.ShippingPartner, name))
	}
	return orDefault(blank,
		partnerField(in.OrderedBy, name),
		parentName(in.OrderedBy),
		parentName(in.ShippingPartner),
		partnerField(in.ShippingPartner, name),
	)
}

// Address is the resolved delivery address.
type Address struct {
	Street   string
	Street2  string
	Street3  string
	PostCode string
	City     string
	Country  string
}

// ShippingAddress applies order-level overrides over the partner's own fields.
// Empty results become a single space.
func ShippingAddress(order *models.SaleOrder, partner *models.ResPartner) Address {
	var o models.SaleOrder
	if order != nil {
		o = *order
	}
	addr := Address{
		Street:   orDefault(blank, value(o.ShippingStreet), partnerField(partner, street)),
		Street2:  orDefault(blank, prefixed("c/o ", o.ShippingCareOf), partnerField(partner, street2)),
		Street3:  blank,
		PostCode: orDefault(blank, value(o.ShippingPostalCode), partnerField(partner, zip)),
		City:     orDefault(blank, value(o.ShippingCity), partnerField(partner, city)),
		Country:  orDefault(DefaultCountryCode, partnerField(partner, country)),
	}
	if partner != nil && partner.Parent != nil && partner.Name != "" {
		addr.Street3 = "Att: " + partner.Name
	}
	return addr
}

// Customer builds the customer block of an outbound order.
func Customer(in CustomerInput) (wms.Customer, error) {
	p := in.ShippingPartner
	if p == nil {
		return wms.Customer{}, &wms.ValidationError{Reason: "missing shipping partner"}
	}
	addr := ShippingAddress(in.Order, p)
	code := strconv.FormatInt(p.ID, 10)

	return wms.Customer{
		CustomerOperation:      wms.OperationCreateOrUpdate,
		CustomerIdentification: wms.IdentifyByExternalCustomerCode,
		ExternalCustomerCode:   code,
		CustomerNumber:         orDefault(code, value(p.Ref)),
		Name:                   ShippingName(in),
		Address:                addr.Street,
		Address2:               addr.Street2,
		Address3:               addr.Street3,
		PostCode:               addr.PostCode,
		City:                   addr.City,
		CountryCode:            addr.Country,
		TelePhone:              p.Phone,
		MobilePhone:            p.Mobile,
		Email:                  p.Email,
		Remark:                 p.Comment,
		NotifyBySMS:            p.Mobile != "",
		NotifyByEmail:          p.Email != "",
		NotifyByTelephone:      p.Email != "",
		IsVisible:              false,
	}, nil
}
