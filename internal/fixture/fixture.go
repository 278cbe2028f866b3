// Package fixture loads customers and orders from JSON seed files.
//
// The file layout is:
//
//	{
//	  "customers": [{"id": "c1", "active": true, "premium": false}],
//	  "orders": [{
//	    "id": "o1", "customer_id": "c1", "status": "CREATED",
//	    "cancellation_reason": "", "created_at": "2024-01-01T00:00:00Z",
//	    "items": [{"product_id": "p1", "price": "10.50", "quantity": 2}]
//	  }]
//	}
//
// Files ending in .gz are decompressed first.
package fixture

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/SUVA-tech/order-processing-engine/internal/domain/order"
)

// readBufferSize is the jx read buffer used when streaming a fixture file.
const readBufferSize = 64 * 1024

// Set is the decoded content of a fixture file.
type Set struct {
	Customers []order.Customer
	Orders    []*order.Order
}

// Load streams the fixture file at path through the decoder without reading
// it into memory first.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	set, err := decode(jx.Decode(r, readBufferSize))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return set, nil
}

// Decode parses fixture JSON. Orders without an id get a random UUID and
// orders without a status start as CREATED.
func Decode(data []byte) (*Set, error) {
	return decode(jx.DecodeBytes(data))
}

func decode(d *jx.Decoder) (*Set, error) {
	set := &Set{}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "customers":
			return d.Arr(func(d *jx.Decoder) error {
				c, err := decodeCustomer(d)
				if err != nil {
					return errors.Wrapf(err, "customer %d", len(set.Customers))
				}
				set.Customers = append(set.Customers, c)
				return nil
			})
		case "orders":
			return d.Arr(func(d *jx.Decoder) error {
				o, err := decodeOrder(d)
				if err != nil {
					return errors.Wrapf(err, "order %d", len(set.Orders))
				}
				set.Orders = append(set.Orders, o)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func decodeCustomer(d *jx.Decoder) (order.Customer, error) {
	var c order.Customer
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			c.ID, err = d.Str()
		case "active":
			c.Active, err = d.Bool()
		case "premium":
			c.Premium, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return c, err
	}
	if c.ID == "" {
		return c, errors.New("customer id is required")
	}
	return c, nil
}

func decodeOrder(d *jx.Decoder) (*order.Order, error) {
	var (
		id, customerID, status, reason string
		createdAt                      time.Time
		items                          []order.Item
	)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			id, err = d.Str()
		case "customer_id":
			customerID, err = d.Str()
		case "status":
			status, err = d.Str()
		case "cancellation_reason":
			reason, err = optionalStr(d)
		case "created_at":
			var raw string
			if raw, err = d.Str(); err != nil {
				return err
			}
			createdAt, err = time.Parse(time.RFC3339, raw)
		case "items":
			err = d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItem(d)
				if err != nil {
					return errors.Wrapf(err, "item %d", len(items))
				}
				items = append(items, item)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if id == "" {
		id = uuid.NewString()
	}
	if status == "" {
		status = string(order.StatusCreated)
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return order.Restore(id, customerID, items, order.Status(status), reason, createdAt)
}

func decodeItem(d *jx.Decoder) (order.Item, error) {
	var item order.Item
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "product_id":
			item.ProductID, err = d.Str()
		case "price":
			item.Price, err = decodeDecimal(d)
		case "quantity":
			item.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	return item, err
}

// decodeDecimal accepts both JSON numbers and numeric strings.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = string(n)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse price %q", raw)
	}
	return v, nil
}

func optionalStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}
