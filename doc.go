// Package gcn implements semi-supervised node classification on a fixed
// graph with graph convolutional layers. The package centers on four pieces:
// an immutable Graph with per-node attribute tables, a sparse
// message-passing primitive, the GraphConv layer, and a Trainer that drives
// the forward/backward/adjust cycle from a partial label signal.
//
// Building and training a model looks like:
//
//		g, _ := gcn.NewGraph(n, srcs, dsts)
//		g.SetAttr("feat", feats)
//		g.SetIntAttr("label", labels)
//		// ... masks: "train_mask", "val_mask", "test_mask"
//
//		model, _ := gcn.NewGCN(inFeats, 16, numClasses)
//
//		trainer, _ := gcn.NewTrainer(gcn.TrainArgs{
//			Graph:    g,
//			Model:    model,
//			CostFunc: costfuncs.CrossEntropy(),
//			Opt:      optimizers.Adam(),
//			Epochs:   200,
//		})
//		err := trainer.Train()
//
// Implementations of CostFunction, Optimizer, Initializer and HyperParameter
// live in the subpackages "costfuncs", "optimizers", "initializers" and
// "hyperparams". The "dataset" subpackage supplies graphs in the attribute
// layout the Trainer expects.
//
// The Graph is read-only after construction; layers receive and return plain
// matrices, and only the optimizer mutates parameters. Gradients are computed
// layer by layer through GraphConv.Backward rather than by a general autodiff
// engine, which keeps the whole cycle synchronous and inspectable.
package gcn
