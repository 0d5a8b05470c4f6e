package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/lc3sim/insts"
	"github.com/sarchlab/lc3sim/sim"
)

// runREPL runs the interactive debugger until quit or EOF.
func runREPL(s *sim.Simulator, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "LC3Sim interactive debugger. Type 'help' for commands.")
	for {
		fmt.Fprint(out, "(lc3sim) ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "step", "s":
			s.Step()
			printLocation(s, out)

		case "run", "r":
			bound := uint64(0)
			if len(fields) > 1 {
				n, err := strconv.ParseUint(fields[1], 0, 64)
				if err != nil {
					fmt.Fprintf(out, "bad cycle count %q\n", fields[1])
					continue
				}
				bound = n
			}
			result := s.Run(bound)
			fmt.Fprintf(out, "stopped after %d cycles", result.Cycles)
			if s.IsHalted() {
				fmt.Fprint(out, " (halted)")
			}
			fmt.Fprintln(out)

		case "reg":
			printRegisters(s, out)

		case "mem":
			if len(fields) < 2 {
				fmt.Fprintln(out, "usage: mem <addr> [count]")
				continue
			}
			printMemory(s, out, fields[1:])

		case "load":
			if len(fields) < 2 {
				fmt.Fprintln(out, "usage: load <file.obj>")
				continue
			}
			if err := loadInto(s, fields[1]); err != nil {
				fmt.Fprintf(out, "load failed: %v\n", err)
			}

		case "reset":
			s.Reset()
			fmt.Fprintln(out, "machine reset")

		case "help", "h":
			printHelp(out)

		case "quit", "q":
			return

		default:
			fmt.Fprintf(out, "unknown command %q, try 'help'\n", fields[0])
		}
	}
}

func printLocation(s *sim.Simulator, out io.Writer) {
	pc := s.GetPC()
	word := s.GetMemory(pc)
	fmt.Fprintf(out, "PC=0x%04X  next=%s (0x%04X)",
		uint16(pc), insts.OpcodeOf(word), uint16(word))
	if s.IsHalted() {
		fmt.Fprint(out, "  [halted]")
	}
	fmt.Fprintln(out)
}

func printRegisters(s *sim.Simulator, out io.Writer) {
	for i := uint8(0); i < insts.NumGPRs; i++ {
		v, _ := s.GetRegister(i)
		fmt.Fprintf(out, "R%d=0x%04X ", i, uint16(v))
		if i == 3 {
			fmt.Fprintln(out)
		}
	}
	fmt.Fprintf(out, "\nPC=0x%04X CC=%s cycles=%d instructions=%d\n",
		uint16(s.GetPC()), ccString(s), s.CycleCount(), s.InstructionCount())
}

func printMemory(s *sim.Simulator, out io.Writer, args []string) {
	addr, err := strconv.ParseUint(args[0], 0, 16)
	if err != nil {
		fmt.Fprintf(out, "bad address %q\n", args[0])
		return
	}
	count := uint64(1)
	if len(args) > 1 {
		count, err = strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			fmt.Fprintf(out, "bad count %q\n", args[1])
			return
		}
	}
	for i := uint64(0); i < count; i++ {
		a := insts.Word(addr + i)
		w := s.GetMemory(a)
		fmt.Fprintf(out, "0x%04X: 0x%04X  %s\n",
			uint16(a), uint16(w), insts.OpcodeOf(w))
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  step, s            execute one instruction")
	fmt.Fprintln(out, "  run, r [cycles]    run until halt or cycle bound")
	fmt.Fprintln(out, "  reg                show registers, PC, CC, counters")
	fmt.Fprintln(out, "  mem <addr> [n]     show n memory words at addr")
	fmt.Fprintln(out, "  load <file.obj>    load an object file")
	fmt.Fprintln(out, "  reset              return to power-on state")
	fmt.Fprintln(out, "  quit, q            exit")
}
