package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/pkg/compression"
	"github.com/mandrykarina/GC/pkg/model"
)

var (
	genType           string
	genObjects        int
	genObjectSize     uint64
	genHeap           uint64
	genCollectionType string
	genOutput         string
)

// generateCmd writes a generated scenario file.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a scenario file from an object graph shape",
	Long: `Generate a scenario of allocate, root, reference and collect operations
for a linear chain, a cycle or a binary tree of objects, and write it in the
scenario file format accepted by run and compare.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	binName := BinName()
	generateCmd.Example = `  # Print a five object cycle
  ` + binName + ` generate --type cycle -n 5

  # Write a tree scenario that asks for the cascade collector
  ` + binName + ` generate --type tree -n 31 --collection-type cascade -o tree.json

  # Write a large zstd compressed chain
  ` + binName + ` generate --type linear -n 10000 -o chain.json.zst`

	generateCmd.Flags().StringVarP(&genType, "type", "t", "linear", "Graph shape: linear, cycle or tree (or basic, cycle_leak, cascade)")
	generateCmd.Flags().IntVarP(&genObjects, "objects", "n", 0, "Number of objects")
	generateCmd.Flags().Uint64VarP(&genObjectSize, "size", "s", 0, "Size of each object in bytes")
	generateCmd.Flags().Uint64Var(&genHeap, "heap", 0, "Heap limit in bytes")
	generateCmd.Flags().StringVar(&genCollectionType, "collection-type", "", "collection_type written to the file")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file, compressed when it ends in .gz or .zst (default: stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	def := cfg.Simulation
	if genObjects == 0 {
		genObjects = def.NumObjects
	}
	if genObjectSize == 0 {
		genObjectSize = def.ObjectSize
	}
	if genHeap == 0 {
		genHeap = def.HeapSize
	}

	kind, err := scenario.ParseGraphKind(genType)
	if err != nil {
		return err
	}
	gen := scenario.GenerateConfig{Kind: kind, NumObjects: genObjects, ObjectSize: genObjectSize, HeapSize: genHeap}
	if err := gen.Validate(&cfg.Limits); err != nil {
		return err
	}

	sc, err := scenario.Preset(genType, genObjects, genObjectSize, genHeap)
	if err != nil {
		return err
	}
	switch ct := model.CollectionType(genCollectionType); ct {
	case "", model.CollectionReferenceCounting, model.CollectionMarkSweep, model.CollectionCascade:
		sc.CollectionType = ct
	default:
		return fmt.Errorf("unknown collection type %q", genCollectionType)
	}

	data, err := scenario.Encode(sc)
	if err != nil {
		return err
	}

	if genOutput == "" {
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	data, err = compression.CompressForPath(genOutput, data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(genOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	GetLogger().Info("Scenario %s with %d operations written to %s", sc.Name, len(sc.Operations), genOutput)
	return nil
}
