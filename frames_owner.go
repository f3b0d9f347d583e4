package id3

// OwnershipFrame is an OWNE frame.
type OwnershipFrame struct {
	FrameHeader
	Encoding  Encoding
	PricePaid string
	// PurchaseDate is an 8 character date, YYYYMMDD.
	PurchaseDate string
	Seller       string
}

func (f *OwnershipFrame) Value() string {
	if f.Seller == "" {
		return f.PricePaid + " " + f.PurchaseDate
	}
	return f.Seller + " [" + f.PricePaid + " " + f.PurchaseDate + "]"
}

func (f *OwnershipFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 1 {
		return ErrNotEnoughData
	}
	enc, err := parseEncoding(data[0])
	if err != nil {
		return err
	}
	// An empty price and seller still need a terminator and a date.
	if len(data) < enc.nulWidth()+9 {
		return ErrNotEnoughData
	}

	price, n := decodeTerminated(ISO88591, data[1:])
	pos := 1 + n
	if pos+8 > len(data) {
		return ErrNotEnoughData
	}

	f.Encoding = enc
	f.PricePaid = price
	f.PurchaseDate = decodeString(ISO88591, data[pos:pos+8])
	f.Seller, _ = decodeTerminated(enc, data[pos+8:])

	return nil
}

func (f *OwnershipFrame) encode(v Version) []byte {
	enc := f.Encoding.fit(v, f.Seller)

	date := []byte("00000000")
	copy(date, encodeString(ISO88591, f.PurchaseDate))

	return concat([]byte{byte(enc)}, encodeTerminated(ISO88591, f.PricePaid), date, encodeString(enc, f.Seller))
}

// TermsOfUseFrame is a USER frame.
type TermsOfUseFrame struct {
	FrameHeader
	Encoding Encoding
	Language string
	Text     string
}

func (f *TermsOfUseFrame) Key() string   { return f.id + ":" + f.Language }
func (f *TermsOfUseFrame) Value() string { return f.Text }

func (f *TermsOfUseFrame) parse(_ frameContext, data []byte) error {
	if len(data) < 4 {
		return ErrNotEnoughData
	}
	enc, err := parseEncoding(data[0])
	if err != nil {
		return err
	}

	f.Encoding = enc
	f.Language = decodeString(ISO88591, data[1:4])
	f.Text, _ = decodeTerminated(enc, data[4:])

	return nil
}

func (f *TermsOfUseFrame) encode(v Version) []byte {
	enc := f.Encoding.fit(v, f.Text)
	return concat([]byte{byte(enc)}, language(f.Language), encodeString(enc, f.Text))
}
