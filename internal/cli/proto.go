package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/funvibe/funtype/internal/protobridge"
	"github.com/funvibe/funtype/pkg/typecheck"
)

func newProtoCmd(opts *rootOptions) *cobra.Command {
	var (
		protoFile string
		imports   []string
		message   string
		typeName  string
	)
	cmd := &cobra.Command{
		Use:   "proto [PAYLOAD...]",
		Short: "Decode protobuf payloads and validate the result",
		Long: `proto loads a .proto file, derives the type of a message and decodes
binary payloads into it. Payloads validate against the message's own
derived type, or against a schema type when --type is given. With no
payloads the derived field types are printed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := protobridge.NewRegistry()
			file, paths := protoFile, imports
			if len(paths) == 0 {
				paths = []string{filepath.Dir(file)}
				file = filepath.Base(file)
			}
			if err := reg.LoadFile(file, paths...); err != nil {
				return err
			}
			expected, err := reg.MessageType(message)
			if err != nil {
				return err
			}
			if typeName != "" {
				s, err := loadSchema(opts)
				if err != nil {
					return err
				}
				expected, err = s.Resolve(typeName)
				if err != nil {
					return err
				}
			}

			rep := newReporter(cmd, opts)
			if len(args) == 0 {
				cls, ok := reg.Class(message)
				if !ok {
					return fmt.Errorf("message type %q has no derived class", message)
				}
				for _, f := range cls.Fields {
					rep.Shape(cls.Name+"."+f.Name, typecheck.Print(f.Type))
				}
				return nil
			}

			failed := 0
			for _, path := range args {
				payload, err := os.ReadFile(path)
				if err != nil {
					rep.Fail(path, err)
					failed++
					continue
				}
				decoded, err := reg.Decode(message, payload)
				if err != nil {
					rep.Fail(path, err)
					failed++
					continue
				}
				if err := typecheck.Validate(decoded, expected); err != nil {
					rep.Fail(path, err)
					failed++
					continue
				}
				rep.Pass(path)
			}
			rep.Summary(len(args), failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d payloads failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&protoFile, "file", "f", "", "proto source file")
	cmd.Flags().StringArrayVarP(&imports, "import", "I", nil, "proto import path (repeatable, default: the proto file's directory)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message type, fully qualified or bare")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "schema type to validate decoded payloads against")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("message")
	return cmd
}
