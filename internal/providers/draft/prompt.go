package draft

import (
	"fmt"
	"strings"

	"echomail/internal/domain"
)

const masterInstruction = `Tu prioridad número uno es usar el vocabulario exacto, las expresiones y el tono base de la transcripción del usuario. El usuario debe sonar como él mismo. Aplica la TÉCNICA DE COPYWRITING solicitada ÚNICAMENTE como estructura mental y ritmo, pero nunca suenes a IA corporativa. Adapta el texto a la LONGITUD solicitada.`

const formatRule = `FORMATO OBLIGATORIO: Devuelve el email en Markdown. Usa **negritas** en las frases clave (gancho, beneficio principal, llamada a la acción) para mejorar la legibilidad. Ejemplo: **Esta es la idea más importante**. No uses ningún otro formato Markdown (ni listas, ni encabezados), solo negritas con **.`

type techniqueGuide struct {
	label string
	guide string
}

var techniqueGuides = map[domain.Technique]techniqueGuide{
	domain.TechniqueDirectSale: {
		label: "Venta Directa y Provocadora",
		guide: "Estilo direct response clásico. Afirmaciones provocadoras. Gancho que rompe el patrón. Llamada a la acción sin rodeos. Sin disculpas ni excusas.",
	},
	domain.TechniqueValueOffer: {
		label: "Valor Lógico y Oferta Irresistible",
		guide: "Estilo Alex Hormozi. Problema doloroso → Solución obvia → Oferta irresistible. Usa viñetas y foco en el ROI. Cuantifica el valor siempre que sea posible.",
	},
	domain.TechniqueEmpathy: {
		label: "Empatía y Conexión Emocional",
		guide: "Estilo Brené Brown / Simon Sinek. Reconoce el dolor o frustración del lector. Construye puentes emocionales. Tono cálido y humano. Validación antes de propuesta.",
	},
	domain.TechniqueMinimalist: {
		label: "Reflexión Minimalista",
		guide: "Estilo James Clear. Breve, elegante. 3 ideas o puntos máximo. Sin relleno. Cada palabra cuenta. Ritmo pausado.",
	},
	domain.TechniqueNewsletter: {
		label: "Informativo con Chispa",
		guide: "Estilo The Hustle / Morning Brew. Datos y hechos con personalidad. Toques de humor o ironía sutil. Mantén al lector curioso.",
	},
	domain.TechniqueStorytelling: {
		label: "Historia Inspiracional",
		guide: "Estilo Seth Godin. Arco narrativo: situación inicial → conflicto/obstáculo → transformación. El email cuenta una mini historia con moraleja aplicable.",
	},
	domain.TechniqueEducational: {
		label: "Guía Educativa y Cercana",
		guide: "Estilo profesor amigable. Pasos claros, ejemplos concretos. Tono cercano sin ser condescendiente. 'Aquí te muestro cómo'.",
	},
	domain.TechniqueStrategic: {
		label: "Análisis Estratégico Profundo",
		guide: "Estilo consultor senior. Insights basados en datos o experiencia. Estructura: contexto → análisis → conclusión → recomendación. Profesional pero accesible.",
	},
	domain.TechniqueTechnical: {
		label: "Al Grano y Tecnológico",
		guide: "Estilo desarrollador/Product Manager. Frases cortas. Sin floreos. Bullets o listas. Lenguaje técnico cuando aporte. Eficiencia verbal.",
	},
	domain.TechniqueNoFilter: {
		label: "Venta Agresiva y Polarizante (Sin Filtros)",
		guide: "Estilo bofetada de realidad (Dan Kennedy / Monge Malo). Tono arrogante pero justificado. Señala un error estúpido que el lector comete. Crea polarización. Frases de una línea. Llamada a la acción dura.",
	},
}

var lengthGuides = map[domain.Length]techniqueGuide{
	domain.LengthShort: {
		label: "Corto (Directo al grano)",
		guide: "Email muy breve: 80-120 palabras máximo. Ir al núcleo sin rodeos.",
	},
	domain.LengthMedium: {
		label: "Medio (Aprox. 300 palabras)",
		guide: "Email de longitud media: aproximadamente 250-350 palabras. Equilibrio entre impacto y desarrollo.",
	},
	domain.LengthLong: {
		label: "Largo (Storytelling completo)",
		guide: "Email largo con espacio para storytelling: 400-600 palabras. Puedes desarrollar contexto, historia y conclusión.",
	},
}

var languageNames = map[string]string{
	"es": "español de España",
	"ca": "catalán",
	"pt": "portugués",
	"en": "inglés",
	"fr": "francés",
	"de": "alemán",
	"zh": "chino simplificado",
	"ja": "japonés",
}

func languageInstruction(locale string) string {
	name, ok := languageNames[strings.ToLower(strings.TrimSpace(locale))]
	if !ok {
		name = languageNames["es"]
	}
	return fmt.Sprintf("INSTRUCCIÓN CRÍTICA Y OBLIGATORIA: El email final DEBE estar escrito ÚNICAMENTE en %s. Usa vocabulario, expresiones y convenciones propias de ese idioma/región. Mantén el tono y estructura de la técnica de copywriting elegida, pero adapta cada frase para que suene 100%% nativa. Cero mezcla de idiomas.", name)
}

// buildSystemPrompt assembles the composition instructions for a brief.
// Unknown techniques and lengths were already normalized away upstream,
// but the lookup still falls back to the defaults.
func buildSystemPrompt(req Request) string {
	technique, ok := techniqueGuides[req.Brief.Technique]
	if !ok {
		technique = techniqueGuides[domain.DefaultTechnique]
	}
	length, ok := lengthGuides[req.Brief.Length]
	if !ok {
		length = lengthGuides[domain.DefaultLength]
	}

	sb := &strings.Builder{}
	sb.WriteString(masterInstruction)
	sb.WriteString("\n\n")
	sb.WriteString(languageInstruction(req.Brief.Locale))
	fmt.Fprintf(sb, "\n\nTécnica aplicada: %s\nDirectrices de la técnica: %s\n", technique.label, technique.guide)
	fmt.Fprintf(sb, "\nLongitud solicitada: %s\nGuía de longitud: %s\n", length.label, length.guide)
	writeBrandContext(sb, req)
	sb.WriteString("\nTransforma la anécdota transcrita en un email persuasivo. Usa la estructura: Gancho → Desarrollo (historia/argumento) → Llamada a la acción. No suenes a robot corporativo.\n\n")
	sb.WriteString(formatRule)
	return sb.String()
}

func writeBrandContext(sb *strings.Builder, req Request) {
	brand := strings.TrimSpace(req.Brief.BrandName)
	context := strings.TrimSpace(req.Brief.BrandContext)
	if req.Profile != nil {
		if brand == "" {
			brand = strings.TrimSpace(req.Profile.Brand)
		}
		if context == "" && req.Profile.UseCompanyContext {
			context = strings.TrimSpace(req.Profile.CompanyContext)
		}
	}
	if brand != "" {
		fmt.Fprintf(sb, "\nMarca del remitente: %s\n", brand)
	}
	if context != "" {
		fmt.Fprintf(sb, "\nContexto de la empresa (úsalo solo si aporta): %s\n", context)
	}
	if req.Profile != nil {
		for _, doc := range req.Profile.Docs {
			doc = strings.TrimSpace(doc)
			if doc == "" {
				continue
			}
			fmt.Fprintf(sb, "\nDocumento de voz de marca (imita este estilo): %s\n", doc)
		}
	}
	if len(req.Catalog) > 0 {
		sb.WriteString("\nCatálogo de productos disponible (menciona solo lo relevante):\n")
		for _, item := range req.Catalog {
			line := item.Name
			if item.Price != "" {
				line += " - " + item.Price
			}
			if item.Description != "" {
				line += " (" + item.Description + ")"
			}
			fmt.Fprintf(sb, "- %s\n", line)
		}
	}
}

func userPrompt(req Request) string {
	return "Anécdota transcrita del usuario:\n\n" + req.Brief.Transcript
}
