package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dgallion1/taskdraft/internal/export"
	"github.com/dgallion1/taskdraft/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Render a task statement as a DOCX answer sheet",
	Long: `Export segments a task statement and writes a DOCX with the cover page,
the question index and one section per RA group. Answers are left as
placeholders. Student details can be set in taskdraft.yaml (surname, name,
dni) so they do not have to be passed on every run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seg, err := loadStatement(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		doc := &store.Document{
			TemplateType: viper.GetString("template"),
			Subject:      viper.GetString("subject"),
			Topic:        viper.GetString("topic"),
			Questions:    seg.Questions,
		}
		opts := export.Options{
			Subject: doc.Subject,
			Topic:   doc.Topic,
			Surname: viper.GetString("surname"),
			Name:    viper.GetString("name"),
			DNI:     viper.GetString("dni"),
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = export.Filename(time.Now())
			if meta, _ := cmd.Flags().GetBool("meta-name"); meta {
				out = export.MetaFilename(opts)
			}
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := export.Render(f, doc, opts); err != nil {
			f.Close()
			return fmt.Errorf("render: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d questions)\n", out, len(doc.Questions))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default AIDraft_Tarea_<date>.docx)")
	exportCmd.Flags().Bool("meta-name", false, "name the file ASIGNATURA_APELLIDOS_NOMBRE_DNI_TEMA.docx")
	exportCmd.Flags().String("template", store.DefaultTemplate, "cover template: FOC, CUSTOM or PLAIN")
	exportCmd.Flags().String("subject", "", "subject (asignatura)")
	exportCmd.Flags().String("topic", "", "topic (tema)")
	exportCmd.Flags().String("surname", "", "student surname(s)")
	exportCmd.Flags().String("name", "", "student name")
	exportCmd.Flags().String("dni", "", "student DNI")

	for _, key := range []string{"template", "subject", "topic", "surname", "name", "dni"} {
		viper.BindPFlag(key, exportCmd.Flags().Lookup(key))
	}

	rootCmd.AddCommand(exportCmd)
}
