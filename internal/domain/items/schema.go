package items

const (
	FieldName             = "name"
	FieldItemColor        = "itemColor"
	FieldAdditionalInfo   = "additionalInfo"
	FieldFoundDate        = "foundDate"
	FieldLocation         = "location"
	FieldFoundPlace       = "foundPlace"
	FieldNotificationDate = "notificationDate"
	FieldWarehousePlace   = "warehousePlace"
)

const (
	TypeString = "string"
	TypeDate   = "date"
)

// FieldSpec describes one field of the normalized item record.
type FieldSpec struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

func (f FieldSpec) IsDate() bool { return f.Type == TypeDate }

var targetSchema = [...]FieldSpec{
	{Name: FieldName, Type: TypeString, Description: "Krótka nazwa / opis znalezionej rzeczy."},
	{Name: FieldItemColor, Type: TypeString, Description: "Kolor rzeczy, jeśli jest znany."},
	{Name: FieldAdditionalInfo, Type: TypeString, Description: "Dodatkowe informacje, np. marka, model, numer seryjny."},
	{Name: FieldFoundDate, Type: TypeDate, Description: "Data znalezienia rzeczy."},
	{Name: FieldLocation, Type: TypeString, Description: "Ogólne miejsce znalezienia (miasto, rejon)."},
	{Name: FieldFoundPlace, Type: TypeString, Description: "Bardziej szczegółowe miejsce znalezienia."},
	{Name: FieldNotificationDate, Type: TypeDate, Description: "Data przyjęcia zawiadomienia."},
	{Name: FieldWarehousePlace, Type: TypeString, Description: "Miejsce przechowywania rzeczy."},
}

// Schema returns a copy of the target schema in its canonical order.
func Schema() []FieldSpec {
	out := make([]FieldSpec, len(targetSchema))
	copy(out, targetSchema[:])
	return out
}

func FieldNames() []string {
	out := make([]string, len(targetSchema))
	for i, f := range targetSchema {
		out[i] = f.Name
	}
	return out
}

func Lookup(name string) (FieldSpec, bool) {
	for _, f := range targetSchema {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func IsDateField(name string) bool {
	f, ok := Lookup(name)
	return ok && f.IsDate()
}
