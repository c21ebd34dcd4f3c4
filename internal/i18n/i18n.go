// ABOUTME: User-facing message catalog for the admin UI (Spanish default, English).
// ABOUTME: Message keys are the Spanish strings; English is registered with x/text.

package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam selects a language explicitly (?lang=en).
const LangParam = "lang"

// Page status messages. One static message per operation.
const (
	MsgLoading          = "Cargando proveedores..."
	MsgEmpty            = "No hay proveedores registrados para este restaurante."
	MsgLoadFailed       = "Error al cargar los proveedores."
	MsgRestaurantFail   = "Error al cargar el restaurante."
	MsgDeleteConfirm    = "¿Estás seguro de eliminar este proveedor?"
	MsgDeleted          = "Proveedor eliminado correctamente."
	MsgDeleteFailed     = "Error al eliminar el proveedor."
	MsgEditLoadFailed   = "No se pudo cargar el proveedor para editar."
	MsgUpdated          = "Proveedor actualizado correctamente."
	MsgCreated          = "Proveedor creado correctamente."
	MsgNotFound         = "Restaurante no encontrado"
	MsgLoginFailed      = "Email o contraseña incorrectos"
	MsgLoginUnreachable = "No se pudo conectar con el servidor."
)

// Form messages.
const (
	MsgNameRequired = "El nombre es obligatorio."
	MsgEmailInvalid = "El email no es válido."
	MsgPhoneInvalid = "El teléfono no es válido."
	MsgSaveRejected = "Los datos del proveedor no son válidos."
	MsgSaveFailed   = "Error al guardar el proveedor."
	MsgStaleForm    = "El formulario ya no corresponde al proveedor abierto."
)

var english = map[string]string{
	MsgLoading:          "Loading providers...",
	MsgEmpty:            "No providers registered for this restaurant.",
	MsgLoadFailed:       "Failed to load providers.",
	MsgRestaurantFail:   "Failed to load the restaurant.",
	MsgDeleteConfirm:    "Are you sure you want to delete this provider?",
	MsgDeleted:          "Provider deleted.",
	MsgDeleteFailed:     "Failed to delete the provider.",
	MsgEditLoadFailed:   "Could not load the provider for editing.",
	MsgUpdated:          "Provider updated.",
	MsgCreated:          "Provider created.",
	MsgNotFound:         "Restaurant not found",
	MsgLoginFailed:      "Incorrect email or password",
	MsgLoginUnreachable: "Could not reach the server.",
	MsgNameRequired:     "Name is required.",
	MsgEmailInvalid:     "Email is not valid.",
	MsgPhoneInvalid:     "Phone is not valid.",
	MsgSaveRejected:     "The provider data was rejected.",
	MsgSaveFailed:       "Failed to save the provider.",
	MsgStaleForm:        "The form no longer matches the open provider.",

	// Labels used by templates.
	"Detalles de":            "Details of",
	"Ciudad":                 "City",
	"Zona":                   "Zone",
	"Porcentaje":             "Percentage",
	"Estado":                 "Status",
	"Descripción":            "Description",
	"Proveedores Asociados":  "Associated Providers",
	"Nombre":                 "Name",
	"Categoría":              "Category",
	"Teléfono":               "Phone",
	"Email":                  "Email",
	"Acciones":               "Actions",
	"Editar":                 "Edit",
	"Eliminar":               "Delete",
	"Guardar":                "Save",
	"Cancelar":               "Cancel",
	"Nuevo proveedor":        "New provider",
	"Editar proveedor":       "Edit provider",
	"← Volver a Proveedores": "← Back to Providers",
	"Volver al Dashboard":    "Back to Dashboard",
	"Restaurantes":           "Restaurants",
	"Iniciar sesión":         "Sign in",
	"Contraseña":             "Password",
	"Cerrar sesión":          "Sign out",
	"Entrar":                 "Log in",
	"Ver proveedores":        "View providers",
	"Registros de la API":    "API request log",
	"Método":                 "Method",
	"Ruta":                   "Path",
	"Duración":               "Duration",
	"Usuario":                "User",
	"Fecha":                  "Date",
	"Peticiones":             "Requests",
	"Errores":                "Errors",
	"Última hora":            "Last hour",
	"Hoy":                    "Today",
	"Sin registros":          "No entries",
	"Filtrar":                "Filter",
}

var supported = []language.Tag{
	language.Spanish,
	language.English,
}

var matcher = language.NewMatcher(supported)

func init() {
	for key, msg := range english {
		message.SetString(language.English, key, msg)
	}
}

// Default is the language used when nothing else matches.
func Default() language.Tag {
	return language.Spanish
}

// Resolve picks the language for r: ?lang= first, then Accept-Language.
func Resolve(r *http.Request) language.Tag {
	if r == nil {
		return Default()
	}
	if lang := strings.TrimSpace(r.URL.Query().Get(LangParam)); lang != "" {
		if tag, ok := match(lang); ok {
			return tag
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if tag, ok := match(accept); ok {
			return tag
		}
	}
	return Default()
}

func match(value string) (language.Tag, bool) {
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return Default(), false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default(), false
	}
	return supported[idx], true
}

// Printer returns a printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// T translates key for tag. Unknown keys are returned unchanged.
func T(tag language.Tag, key string) string {
	if key == "" {
		return ""
	}
	return message.NewPrinter(tag).Sprintf(key)
}
