package answer

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every drafting request.
const SystemPrompt = "Eres un profesor universitario experto que responde preguntas de alumnos de forma clara y concisa. NO uses asteriscos ni markdown."

const instructions = `INSTRUCCIONES:
1) PRIORIDAD DE FUENTES:
- Si hay CONTEXTO ADICIONAL o DOCUMENTO con contenido útil, ÚSALOS como base principal.
- Si el documento está vacío, solo tiene un título, o no es relevante para la pregunta, responde usando tu CONOCIMIENTO GENERAL.
- En ese caso, empieza tu respuesta con: "Basándome en conocimiento general:"

2) ESTRUCTURA DE RESPUESTA:
RESPUESTA: [2-4 frases directas respondiendo la pregunta]
DESARROLLO (opcional): [Explicación más detallada si es útil, máximo 5-8 líneas]
EJEMPLO (opcional): [Solo si aplica a código o procedimiento técnico]

3) FORMATO OBLIGATORIO:
- PROHIBIDO usar asteriscos (*) para NADA
- PROHIBIDO usar almohadillas (#) para títulos
- PROHIBIDO markdown de ningún tipo
- Usa MAYÚSCULAS para títulos de sección (RESPUESTA:, DESARROLLO:, EJEMPLO:)
- Usa guiones (-) o números (1. 2. 3.) para listas
- Sé CONCISO pero ÚTIL. Responde siempre algo práctico.`

const batchInstructions = `Responde a TODAS las preguntas numeradas. Cada respuesta sigue las mismas reglas:
RESPUESTA breve, DESARROLLO opcional, sin asteriscos, sin almohadillas y sin markdown.
Devuelve un objeto JSON {"answers": [{"index": N, "answer": "..."}]} con un elemento por pregunta, usando el número de pregunta indicado como index.`

// DefaultMaxSourceChars caps the reference document included in a prompt.
const DefaultMaxSourceChars = 35000

// TaskContext joins the user-provided context, tips and rubric into the
// priority block of the prompt.
func TaskContext(notes, tips, rubric string) string {
	var parts []string
	if s := strings.TrimSpace(notes); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(tips); s != "" {
		parts = append(parts, "CONSEJOS:\n"+s)
	}
	if s := strings.TrimSpace(rubric); s != "" {
		parts = append(parts, "RÚBRICA DE EVALUACIÓN:\n"+s)
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt creates the drafting prompt for a single question. The source
// text is cut to maxSource characters; zero means DefaultMaxSourceChars.
func BuildPrompt(question, taskContext, sourceText string, maxSource int) string {
	var sb strings.Builder
	sb.WriteString("ROL: Profesor universitario experto. Responde preguntas de alumnos.\n\n")
	writeSources(&sb, taskContext, sourceText, maxSource)
	sb.WriteString("PREGUNTA:\n")
	sb.WriteString(fmt.Sprintf("%q\n\n", strings.TrimSpace(question)))
	sb.WriteString(instructions)
	return sb.String()
}

// BuildBatchPrompt creates one prompt covering several questions. Indexes
// are the positions the answers must be reported under.
func BuildBatchPrompt(questions map[int]string, indexes []int, taskContext, sourceText string, maxSource int) string {
	var sb strings.Builder
	sb.WriteString("ROL: Profesor universitario experto. Responde preguntas de alumnos.\n\n")
	writeSources(&sb, taskContext, sourceText, maxSource)
	sb.WriteString("PREGUNTAS:\n")
	for _, i := range indexes {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i, strings.TrimSpace(questions[i])))
	}
	sb.WriteString("\n")
	sb.WriteString(batchInstructions)
	return sb.String()
}

func writeSources(sb *strings.Builder, taskContext, sourceText string, maxSource int) {
	if s := strings.TrimSpace(taskContext); s != "" {
		sb.WriteString("CONTEXTO ADICIONAL:\n--- CONTEXTO PRIORITARIO ---\n")
		sb.WriteString(s)
		sb.WriteString("\n--------------------------\n\n")
	}
	if s := strings.TrimSpace(sourceText); s != "" {
		sb.WriteString("DOCUMENTO DE REFERENCIA:\n--- DOCUMENTO DE REFERENCIA ---\n")
		sb.WriteString(clip(s, maxSource))
		sb.WriteString("\n\n")
	}
}

// clip cuts s to n runes.
func clip(s string, n int) string {
	if n <= 0 {
		n = DefaultMaxSourceChars
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
